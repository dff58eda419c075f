package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"mpi-core/internal/domain/patient"
	"mpi-core/internal/mpierrors"
	"mpi-core/internal/store/queries"
)

// querier is satisfied by both *postgres.Client and *postgres.Transaction,
// letting loadFromDB run inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (s *Store) loadFromDB(ctx context.Context, q querier, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	row := q.QueryRow(ctx, queries.PatientQueries.GetPatientByID, id)
	var genderStr string
	var marital *string
	err := row.Scan(&p.ID, &p.Active, &genderStr, &p.BirthDate, &p.Deceased, &p.DeceasedAt,
		&marital, &p.MultipleBirth, &p.ManagingOrganization,
		&p.CreatedAt, &p.CreatedBy, &p.UpdatedAt, &p.UpdatedBy, &p.DeletedAt, &p.DeletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mpierrors.Database("failed to load patient", err)
	}
	p.Gender = patient.ParseGender(genderStr)
	if marital != nil {
		m := patient.MaritalStatus(*marital)
		p.MaritalStatus = &m
	}

	if p.Names, err = loadNames(ctx, q, id); err != nil {
		return nil, err
	}
	if p.Identifiers, err = loadIdentifiers(ctx, q, id); err != nil {
		return nil, err
	}
	if p.Addresses, err = loadAddresses(ctx, q, id); err != nil {
		return nil, err
	}
	if p.Contacts, err = loadContacts(ctx, q, id); err != nil {
		return nil, err
	}
	if p.Links, err = loadLinks(ctx, q, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func loadNames(ctx context.Context, q querier, id uuid.UUID) ([]patient.PatientName, error) {
	rows, err := q.Query(ctx, queries.PatientQueries.GetNames, id)
	if err != nil {
		return nil, mpierrors.Database("failed to load patient names", err)
	}
	defer rows.Close()

	var out []patient.PatientName
	for rows.Next() {
		var n patient.PatientName
		var use string
		if err := rows.Scan(&n.Family, &n.Given, &n.Prefix, &n.Suffix, &use, &n.IsPrimary); err != nil {
			return nil, mpierrors.Database("failed to scan patient name", err)
		}
		n.Use = patient.NameUse(use)
		out = append(out, n)
	}
	return out, rows.Err()
}

func loadIdentifiers(ctx context.Context, q querier, id uuid.UUID) ([]patient.PatientIdentifier, error) {
	rows, err := q.Query(ctx, queries.PatientQueries.GetIdentifiers, id)
	if err != nil {
		return nil, mpierrors.Database("failed to load patient identifiers", err)
	}
	defer rows.Close()

	var out []patient.PatientIdentifier
	for rows.Next() {
		var pi patient.PatientIdentifier
		var typ string
		if err := rows.Scan(&typ, &pi.System, &pi.Value, &pi.Assigner); err != nil {
			return nil, mpierrors.Database("failed to scan patient identifier", err)
		}
		pi.Type = patient.IdentifierType(typ)
		out = append(out, pi)
	}
	return out, rows.Err()
}

func loadAddresses(ctx context.Context, q querier, id uuid.UUID) ([]patient.PatientAddress, error) {
	rows, err := q.Query(ctx, queries.PatientQueries.GetAddresses, id)
	if err != nil {
		return nil, mpierrors.Database("failed to load patient addresses", err)
	}
	defer rows.Close()

	var out []patient.PatientAddress
	for rows.Next() {
		var a patient.PatientAddress
		var use string
		if err := rows.Scan(&a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Country, &use, &a.IsPrimary); err != nil {
			return nil, mpierrors.Database("failed to scan patient address", err)
		}
		a.Use = patient.AddressUse(use)
		out = append(out, a)
	}
	return out, rows.Err()
}

func loadContacts(ctx context.Context, q querier, id uuid.UUID) ([]patient.PatientContact, error) {
	rows, err := q.Query(ctx, queries.PatientQueries.GetContacts, id)
	if err != nil {
		return nil, mpierrors.Database("failed to load patient contacts", err)
	}
	defer rows.Close()

	var out []patient.PatientContact
	for rows.Next() {
		var c patient.PatientContact
		var channel, use string
		if err := rows.Scan(&channel, &c.Value, &use, &c.IsPrimary); err != nil {
			return nil, mpierrors.Database("failed to scan patient contact", err)
		}
		c.Channel, c.Use = patient.ContactChannel(channel), patient.ContactUse(use)
		out = append(out, c)
	}
	return out, rows.Err()
}

func loadLinks(ctx context.Context, q querier, id uuid.UUID) ([]patient.PatientLink, error) {
	rows, err := q.Query(ctx, queries.PatientQueries.GetLinks, id)
	if err != nil {
		return nil, mpierrors.Database("failed to load patient links", err)
	}
	defer rows.Close()

	var out []patient.PatientLink
	for rows.Next() {
		var l patient.PatientLink
		var typ string
		if err := rows.Scan(&l.Other, &typ); err != nil {
			return nil, mpierrors.Database("failed to scan patient link", err)
		}
		l.Type = patient.LinkType(typ)
		out = append(out, l)
	}
	return out, rows.Err()
}
