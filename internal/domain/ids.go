package domain

// SubjectID is the authenticated subject extracted from JWT claims (typically "sub").
// For Supabase-issued tokens this is the auth user's UUID.
type SubjectID string

// RegistrationID is the store-assigned, monotonically increasing registration key.
// Keyset pagination relies on it being a total, stable order.
type RegistrationID int64

// EventID identifies a gallery event. Assigned when the event list is authored.
type EventID string
