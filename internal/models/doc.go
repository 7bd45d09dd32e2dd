// Package models defines the core domain models for FairSplit.
//
// # Models
//
//   - Member: a person on the bill, identified by a name unique within the bill
//   - Item: a priced line on the bill, shared by a subset of members
//   - SurchargeConfig: service-charge and VAT settings applied to the bill
//   - DerivedTotals: output of the apportionment engine (never stored as the
//     source of truth while a bill is being edited)
//   - BillSnapshot: a frozen bill persisted to history
//   - PaymentRoom: a frozen bill plus payee info, shared with guests by link
//   - User: a registered account that owns bill history
//
// # Design Principles
//
//  1. Members are identified by name strings within a bill; there is no
//     cross-bill identity for participants.
//  2. Snapshots are write-once. Totals on a snapshot were computed at save
//     time and are read back as-is; the breakdown projector re-derives
//     per-member numbers from them rather than replaying the engine.
//  3. Avoid circular references: relationships use ID strings, not pointers.
package models
