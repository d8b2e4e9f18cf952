package audit

import "time"

// AuditLog is one change to an inventory item
type AuditLog struct {
	ID        string         `json:"id" bson:"_id"`
	Action    string         `json:"action" bson:"action"`
	Resource  string         `json:"resource" bson:"resource"`
	RecordID  string         `json:"record_id" bson:"record_id"`
	ActorID   string         `json:"actor_id" bson:"actor_id"`
	Changes   map[string]any `json:"changes,omitempty" bson:"changes,omitempty"`
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
}
