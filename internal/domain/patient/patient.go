// Package patient defines the Patient aggregate: the root entity plus the
// child collections it exclusively owns (names, identifiers, addresses,
// contacts, outgoing links).
package patient

import (
	"time"

	"github.com/google/uuid"
)

// Gender is the closed administrative-gender set.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

// ParseGender maps an ingress string to the closed Gender set, falling back
// to GenderUnknown rather than rejecting, since the set carries an explicit
// "unknown" variant.
func ParseGender(s string) Gender {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return Gender(s)
	default:
		return GenderUnknown
	}
}

// NameUse is the closed classification for PatientName.Use.
type NameUse string

const (
	NameUseUsual     NameUse = "usual"
	NameUseOfficial  NameUse = "official"
	NameUseTemp      NameUse = "temp"
	NameUseNickname  NameUse = "nickname"
	NameUseAnonymous NameUse = "anonymous"
	NameUseOld       NameUse = "old"
	NameUseMaiden    NameUse = "maiden"
)

// AddressUse and ContactUse reuse the same closed classification shape.
type AddressUse string

const (
	AddressUseHome AddressUse = "home"
	AddressUseWork AddressUse = "work"
	AddressUseTemp AddressUse = "temp"
	AddressUseOld  AddressUse = "old"
)

type ContactChannel string

const (
	ContactPhone ContactChannel = "phone"
	ContactFax   ContactChannel = "fax"
	ContactEmail ContactChannel = "email"
	ContactPager ContactChannel = "pager"
	ContactURL   ContactChannel = "url"
	ContactSMS   ContactChannel = "sms"
	ContactOther ContactChannel = "other"
)

type ContactUse string

const (
	ContactUseHome ContactUse = "home"
	ContactUseWork ContactUse = "work"
	ContactUseTemp ContactUse = "temp"
	ContactUseOld  ContactUse = "old"
)

// IdentifierType is the closed set of identifier kinds.
type IdentifierType string

const (
	IdentifierMRN   IdentifierType = "MRN"
	IdentifierSSN   IdentifierType = "SSN"
	IdentifierDL    IdentifierType = "DL"
	IdentifierNPI   IdentifierType = "NPI"
	IdentifierPPN   IdentifierType = "PPN"
	IdentifierTAX   IdentifierType = "TAX"
	IdentifierOther IdentifierType = "OTHER"
)

// LinkType is the closed set of PatientLink relation kinds.
type LinkType string

const (
	LinkReplacedBy LinkType = "replaced_by"
	LinkReplaces   LinkType = "replaces"
	LinkRefer      LinkType = "refer"
	LinkSeeAlso    LinkType = "seealso"
)

// ParseLinkType maps an ingress string onto the closed LinkType set. Unlike
// Gender there is no "unknown" variant to fall back to, so unrecognized
// values report ok=false and the caller rejects.
func ParseLinkType(s string) (LinkType, bool) {
	switch LinkType(s) {
	case LinkReplacedBy, LinkReplaces, LinkRefer, LinkSeeAlso:
		return LinkType(s), true
	default:
		return "", false
	}
}

// MaritalStatus carries a small closed code set used on the root. The store
// writes and reads the value as given; it does not check it against this set.
type MaritalStatus string

const (
	MaritalSingle    MaritalStatus = "single"
	MaritalMarried   MaritalStatus = "married"
	MaritalDivorced  MaritalStatus = "divorced"
	MaritalWidowed   MaritalStatus = "widowed"
	MaritalSeparated MaritalStatus = "separated"
	MaritalUnknown   MaritalStatus = "unknown"
)

// PatientName is a child entity owned exclusively by Patient.
type PatientName struct {
	Family    string
	Given     []string
	Prefix    []string
	Suffix    []string
	Use       NameUse
	IsPrimary bool
}

// PatientIdentifier is a child entity owned exclusively by Patient. The pair
// (System, Value) is globally unique across live and tombstoned patients.
type PatientIdentifier struct {
	Type     IdentifierType
	System   string
	Value    string
	Assigner *string
}

// PatientAddress is a child entity owned exclusively by Patient.
type PatientAddress struct {
	Line1      *string
	Line2      *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
	Use        AddressUse
	IsPrimary  bool
}

// PatientContact is a child entity owned exclusively by Patient.
type PatientContact struct {
	Channel   ContactChannel
	Value     string
	Use       ContactUse
	IsPrimary bool
}

// PatientLink points at another patient's identity; the target is not owned
// by the link's patient and may be a tombstoned identity (dangling
// references are permitted for historical continuity).
type PatientLink struct {
	Other uuid.UUID
	Type  LinkType
}

// Patient is the aggregate root.
type Patient struct {
	ID                   uuid.UUID
	Active               bool
	Gender               Gender
	BirthDate            *time.Time
	Deceased             bool
	DeceasedAt           *time.Time
	MaritalStatus        *MaritalStatus
	MultipleBirth        *bool
	ManagingOrganization *uuid.UUID

	Names       []PatientName
	Identifiers []PatientIdentifier
	Addresses   []PatientAddress
	Contacts    []PatientContact
	Links       []PatientLink

	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
	DeletedAt *time.Time
	DeletedBy *string
}

// IsTombstoned reports whether the aggregate has been soft-deleted.
func (p *Patient) IsTombstoned() bool {
	return p.DeletedAt != nil
}

// PrimaryName returns the single primary name a live patient must carry, or
// false if none is flagged primary (a data-integrity condition the store
// prevents at write time).
func (p *Patient) PrimaryName() (PatientName, bool) {
	for _, n := range p.Names {
		if n.IsPrimary {
			return n, true
		}
	}
	return PatientName{}, false
}

// PrimaryAddress returns the primary address, if any.
func (p *Patient) PrimaryAddress() (PatientAddress, bool) {
	for _, a := range p.Addresses {
		if a.IsPrimary {
			return a, true
		}
	}
	return PatientAddress{}, false
}

// FullName renders prefix + given + family + suffix for the primary name,
// space-joined, for display and for blocking-index full_name field.
func (p *Patient) FullName() string {
	name, ok := p.PrimaryName()
	if !ok {
		return ""
	}
	return name.Render()
}

// Render joins prefix, given tokens, family, and suffix into one string.
func (n PatientName) Render() string {
	parts := make([]string, 0, len(n.Prefix)+len(n.Given)+1+len(n.Suffix))
	parts = append(parts, n.Prefix...)
	parts = append(parts, n.Given...)
	if n.Family != "" {
		parts = append(parts, n.Family)
	}
	parts = append(parts, n.Suffix...)
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
