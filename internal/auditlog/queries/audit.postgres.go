// Package queries holds the named SQL strings the audit log writer runs.
package queries

// AuditQueries holds every statement the audit writer issues.
var AuditQueries = struct {
	Insert        string
	LogsForEntity string
	Recent        string
	ByUser        string
}{
	Insert: `
		INSERT INTO audit_records (
			id, "timestamp", user_id, source_address, user_agent,
			action, entity_type, entity_id, before_snapshot, after_snapshot
		) VALUES ($1, NOW(), $2, $3, $4, $5, $6, $7, $8, $9);
	`,

	LogsForEntity: `
		SELECT id, "timestamp", user_id, source_address, user_agent,
		       action, entity_type, entity_id, before_snapshot, after_snapshot
		FROM audit_records
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY "timestamp" DESC, id DESC
		LIMIT $3;
	`,

	Recent: `
		SELECT id, "timestamp", user_id, source_address, user_agent,
		       action, entity_type, entity_id, before_snapshot, after_snapshot
		FROM audit_records
		ORDER BY "timestamp" DESC, id DESC
		LIMIT $1;
	`,

	ByUser: `
		SELECT id, "timestamp", user_id, source_address, user_agent,
		       action, entity_type, entity_id, before_snapshot, after_snapshot
		FROM audit_records
		WHERE user_id = $1
		ORDER BY "timestamp" DESC, id DESC
		LIMIT $2;
	`,
}
