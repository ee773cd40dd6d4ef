// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package models

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Enum is a string type with a closed set of values.
type Enum interface {
	~string
	Valid() bool
}

// EnumSet is a sorted, duplicate-free set of enum values. It is stored as a
// comma-separated TEXT column and travels as a JSON array. Unknown values are
// rejected on every entry point.
type EnumSet[T Enum] []T

// NewEnumSet validates, deduplicates and sorts vals.
func NewEnumSet[T Enum](vals ...T) (EnumSet[T], error) {
	seen := make(map[T]struct{}, len(vals))
	out := make(EnumSet[T], 0, len(vals))
	for _, v := range vals {
		v = T(strings.ToUpper(strings.TrimSpace(string(v))))
		if !v.Valid() {
			return nil, NewValidationError("", "unknown value %q", string(v))
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Contains reports whether v is in the set.
func (s EnumSet[T]) Contains(v T) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Len returns the number of values.
func (s EnumSet[T]) Len() int { return len(s) }

// Strings returns the values as plain strings.
func (s EnumSet[T]) Strings() []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = string(v)
	}
	return out
}

// Value implements driver.Valuer.
func (s EnumSet[T]) Value() (driver.Value, error) {
	return strings.Join(s.Strings(), ","), nil
}

// Scan implements sql.Scanner.
func (s *EnumSet[T]) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = EnumSet[T]{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("enum set: unsupported source type %T", src)
	}
	if raw == "" {
		*s = EnumSet[T]{}
		return nil
	}
	parts := strings.Split(raw, ",")
	vals := make([]T, len(parts))
	for i, p := range parts {
		vals[i] = T(p)
	}
	set, err := NewEnumSet(vals...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// UnmarshalJSON validates the incoming array.
func (s *EnumSet[T]) UnmarshalJSON(data []byte) error {
	var raw []T
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set, err := NewEnumSet(raw...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// FundingSource is a financing source of a non-formal structure.
type FundingSource string

const (
	FundingEtat         FundingSource = "ETAT"
	FundingPTFs         FundingSource = "PTFS"
	FundingFAFPA        FundingSource = "FAFPA"
	FundingEPA          FundingSource = "EPA"
	FundingONGs         FundingSource = "ONGS"
	FundingAssociations FundingSource = "ASSOCIATIONS"
	FundingFondsPropres FundingSource = "FONDS_PROPRES"
	FundingAutre        FundingSource = "AUTRE"
)

// FundingSources lists every allowed FundingSource.
var FundingSources = []FundingSource{
	FundingEtat, FundingPTFs, FundingFAFPA, FundingEPA,
	FundingONGs, FundingAssociations, FundingFondsPropres, FundingAutre,
}

// Valid implements Enum.
func (f FundingSource) Valid() bool {
	for _, v := range FundingSources {
		if f == v {
			return true
		}
	}
	return false
}

// SupportType is a kind of support offered by orientation platforms.
type SupportType string

const (
	SupportCash      SupportType = "ESPECES"
	SupportEquipment SupportType = "MATERIEL"
	SupportTraining  SupportType = "RENFORCEMENT"
	SupportPlacement SupportType = "PLACEMENT"
	SupportOther     SupportType = "AUTRE"
)

// Valid implements Enum.
func (s SupportType) Valid() bool {
	switch s {
	case SupportCash, SupportEquipment, SupportTraining, SupportPlacement, SupportOther:
		return true
	}
	return false
}

// PaymentMode is how paid training is settled.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "ESPECES"
	PaymentCheque PaymentMode = "CHEQUE"
	PaymentOnline PaymentMode = "LIGNE"
	PaymentInKind PaymentMode = "NATURE"
)

// Valid implements Enum.
func (p PaymentMode) Valid() bool {
	switch p {
	case PaymentCash, PaymentCheque, PaymentOnline, PaymentInKind:
		return true
	}
	return false
}

// InternetAudience is who has internet access at a structure.
type InternetAudience string

const (
	InternetApprentices InternetAudience = "APPRENTIS"
	InternetTrainers    InternetAudience = "FORMATEURS"
	InternetAdmin       InternetAudience = "ADMIN"
	InternetExternal    InternetAudience = "EXTERNE"
)

// Valid implements Enum.
func (a InternetAudience) Valid() bool {
	switch a {
	case InternetApprentices, InternetTrainers, InternetAdmin, InternetExternal:
		return true
	}
	return false
}
