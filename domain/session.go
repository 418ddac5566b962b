package domain

// SessionID identifies one live bidirectional connection. A recipient may
// own any number of concurrent sessions (devices, tabs).
type SessionID string

// RoomID identifies an ad-hoc broadcast scope. Room membership dies with
// the session; there is no explicit leave.
type RoomID string

// TenantRoom is the tenant-wide room every session is enrolled into at
// connect time.
func TenantRoom(tenantID string) RoomID {
	return RoomID("tenant:" + tenantID)
}
