// Package models defines the core domain models for SyncDays.
//
// # Models
//
//   - Group: a named set of users sharing calendar availability
//   - DayRecord: per-group, per-date aggregate of every member's entry
//   - MemberEntry: one member's status and appointments within a day
//   - Appointment: a titled event owned by the member who created it
//   - User: a registered account (local identity mode)
//   - Session: the authenticated actor, passed explicitly to operations
//
// # Design Principles
//
//  1. **Typed sub-records**: a day is a typed map from member ID to
//     MemberEntry, never a loose map of interface values. The store layer
//     translates entry writes into whatever partial-update mechanism the
//     backend offers.
//  2. **Member sub-tree ownership**: every member owns exclusively their
//     own MemberEntry; no write path ever touches another member's entry.
//  3. **Absence is meaningful**: a missing MemberEntry is equivalent to
//     StatusUnknown with no appointments, not an error.
//  4. **Avoid circular references**: relationships use ID strings, not
//     pointers.
package models
