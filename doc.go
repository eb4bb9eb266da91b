// Package taxfolio implements a portfolio accounting and tax-computation
// engine. Given a chronological stream of buy/sell/dividend/fee events across
// multiple portfolios, instruments, and currencies, it reconstructs
// per-instrument tax lots, realized and unrealized gains, dividend income,
// management fees, and jurisdiction-specific tax liabilities, then aggregates
// them into portfolio- and account-wide summaries.
//
// The core functionalities include:
//   - Event Processing: merging and chronologically ordering heterogeneous
//     events (transactions, dividend distributions) and folding them into
//     per-holding state.
//   - Tax Lots: FIFO lot bookkeeping with pro-rata splitting on partial
//     sells, multi-currency cost snapshots, and vesting.
//   - Tax Policies: pure computations for the supported tax regimes
//     (real gain, nominal gain, tax free, RSU account, pension), including
//     inflation (CPI) adjustment of cost basis.
//   - Currency Conversion: alias normalization, agorot handling, and
//     conversion through a time-keyed, USD-pivoted rate table.
//   - Aggregation: holdings rolled up into a dashboard summary with trailing
//     performance windows.
//
// The engine is a pure, synchronous transform: it performs no I/O and owns no
// persistence. All inputs (transactions, dividends, exchange rates, CPI
// series, live prices) are supplied by the caller before or between engine
// passes; the cmd layer shows a file-based example of that wiring.
package taxfolio
