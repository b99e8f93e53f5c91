package common

// AuditTokenHeaderName is the gRPC metadata key carrying the service token
// the coordinator presents to the audit service.
const AuditTokenHeaderName = "audit_token"

// TimestampLayout is the client-side timestamp format sent as the last field
// of every request.
const TimestampLayout = "02/01/2006 15:04:05"
