// Package queries holds the named SQL strings the patient aggregate store
// runs: one struct of named constants per concern instead of SQL scattered
// through Go code.
package queries

// PatientQueries holds every statement the store issues against the
// patients schema (see internal/infrastructure/database/postgres/schema.sql).
var PatientQueries = struct {
	InsertPatient     string
	UpdatePatient     string
	SoftDeletePatient string
	GetPatientByID    string

	InsertName       string
	InsertIdentifier string
	InsertAddress    string
	InsertContact    string
	InsertLink       string

	DeleteNames       string
	DeleteIdentifiers string
	DeleteAddresses   string
	DeleteContacts    string
	DeleteLinks       string

	GetNames       string
	GetIdentifiers string
	GetAddresses   string
	GetContacts    string
	GetLinks       string

	CheckLinkExists string
	DeleteLink      string
	TouchPatient    string

	CheckIdentifierConflict string
	SearchByFamilyLike      string
	ListActive              string
}{
	InsertPatient: `
		INSERT INTO patients (
			id, active, gender, birth_date, deceased, deceased_at,
			marital_status, multiple_birth, managing_organization,
			created_at, created_by, updated_at, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), $10, NOW(), $10
		) RETURNING created_at, updated_at;
	`,

	UpdatePatient: `
		UPDATE patients SET
			active = $2, gender = $3, birth_date = $4, deceased = $5,
			deceased_at = $6, marital_status = $7, multiple_birth = $8,
			managing_organization = $9, updated_at = NOW(), updated_by = $10
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at;
	`,

	SoftDeletePatient: `
		UPDATE patients SET deleted_at = NOW(), deleted_by = $2
		WHERE id = $1 AND deleted_at IS NULL;
	`,

	GetPatientByID: `
		SELECT id, active, gender, birth_date, deceased, deceased_at,
		       marital_status, multiple_birth, managing_organization,
		       created_at, created_by, updated_at, updated_by, deleted_at, deleted_by
		FROM patients
		WHERE id = $1 AND deleted_at IS NULL;
	`,

	InsertName: `
		INSERT INTO patient_names (patient_id, family, given, prefix, suffix, use, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`,
	InsertIdentifier: `
		INSERT INTO patient_identifiers (patient_id, type, system, value, assigner)
		VALUES ($1, $2, $3, $4, $5);
	`,
	InsertAddress: `
		INSERT INTO patient_addresses (patient_id, line1, line2, city, state, postal_code, country, use, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`,
	InsertContact: `
		INSERT INTO patient_contacts (patient_id, channel, value, use, is_primary)
		VALUES ($1, $2, $3, $4, $5);
	`,
	InsertLink: `
		INSERT INTO patient_links (patient_id, other, type)
		VALUES ($1, $2, $3);
	`,

	DeleteNames:       `DELETE FROM patient_names WHERE patient_id = $1;`,
	DeleteIdentifiers: `DELETE FROM patient_identifiers WHERE patient_id = $1;`,
	DeleteAddresses:   `DELETE FROM patient_addresses WHERE patient_id = $1;`,
	DeleteContacts:    `DELETE FROM patient_contacts WHERE patient_id = $1;`,
	DeleteLinks:       `DELETE FROM patient_links WHERE patient_id = $1;`,

	GetNames:       `SELECT family, given, prefix, suffix, use, is_primary FROM patient_names WHERE patient_id = $1;`,
	GetIdentifiers: `SELECT type, system, value, assigner FROM patient_identifiers WHERE patient_id = $1;`,
	GetAddresses:   `SELECT line1, line2, city, state, postal_code, country, use, is_primary FROM patient_addresses WHERE patient_id = $1;`,
	GetContacts:    `SELECT channel, value, use, is_primary FROM patient_contacts WHERE patient_id = $1;`,
	GetLinks:       `SELECT other, type FROM patient_links WHERE patient_id = $1;`,

	CheckLinkExists: `
		SELECT 1 FROM patient_links
		WHERE patient_id = $1 AND other = $2 AND type = $3
		LIMIT 1;
	`,
	DeleteLink: `
		DELETE FROM patient_links
		WHERE patient_id = $1 AND other = $2 AND type = $3;
	`,
	TouchPatient: `
		UPDATE patients SET updated_at = NOW(), updated_by = $2
		WHERE id = $1 AND deleted_at IS NULL;
	`,

	CheckIdentifierConflict: `
		SELECT patient_id FROM patient_identifiers
		WHERE system = $1 AND value = $2 AND patient_id != $3
		LIMIT 1;
	`,

	SearchByFamilyLike: `
		SELECT DISTINCT p.id
		FROM patients p
		JOIN patient_names n ON n.patient_id = p.id
		WHERE p.deleted_at IS NULL AND n.family ILIKE $1
		ORDER BY p.id
		LIMIT $2;
	`,

	ListActive: `
		SELECT id FROM patients
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2;
	`,
}
