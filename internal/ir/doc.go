// Package ir provides the source identity data model for srcid.
//
// This package contains type definitions, canonical serialization and
// content-addressed hashing only. All other internal packages import ir;
// ir imports nothing internal.
//
// Key design constraints:
//   - Announcement is the record exactly as the transport delivered it
//   - Source is the validated form: its Links are a tagged variant, so the
//     pretty-printed inversion of generatedSourceIds never leaks past
//     FromAnnouncement
//   - Output JSON tags use snake_case; Announcement keeps protocol camelCase
//   - Records are immutable once converted
package ir
