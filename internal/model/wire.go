package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Response is the decoded body of a successful POST /analyze.
// Every section is optional; the service output comes from a language model
// and fields are routinely missing.
type Response struct {
	ClinicalExtraction        *ClinicalExtraction        `json:"clinical_extraction,omitempty"`
	NormalizedMedicalConcepts *NormalizedMedicalConcepts `json:"normalized_medical_concepts,omitempty"`
	PackageRecommendation     *PackageRecommendation     `json:"package_recommendation,omitempty"`
	InsuranceJustification    *InsuranceJustification    `json:"insurance_justification,omitempty"`
}

// ClinicalExtraction is the clinical_extraction section.
type ClinicalExtraction struct {
	Diagnoses     TextList `json:"diagnoses"`
	Procedures    TextList `json:"procedures"`
	Complications TextList `json:"complications"`
	SurgeryType   Text     `json:"surgery_type"`
	Anesthesia    Text     `json:"anesthesia"`
	AdmissionType Text     `json:"admission_type"`
	Remarks       Text     `json:"remarks"`
}

// NormalizedMedicalConcepts is the normalized_medical_concepts section.
type NormalizedMedicalConcepts struct {
	PrimaryConditions    TextList `json:"primary_conditions"`
	DefinitiveProcedures TextList `json:"definitive_procedures"`
	SupportingProcedures TextList `json:"supporting_procedures"`
}

// PackageRecommendation is the package_recommendation section.
type PackageRecommendation struct {
	PrimaryPackage          *Package          `json:"primary_package,omitempty"`
	AddOnPackages           []Package         `json:"add_on_packages"`
	RejectedPackages        []RejectedPackage `json:"rejected_packages"`
	TotalApplicablePackages *Number           `json:"total_applicable_packages,omitempty"`
}

// InsuranceJustification is the insurance_justification section.
type InsuranceJustification struct {
	Summary           Text     `json:"summary"`
	ConfidenceScore   *Number  `json:"confidence_score,omitempty"`
	RiskFlags         TextList `json:"risk_flags"`
	RequiredDocuments TextList `json:"required_documents"`
}

// Package is a recommended insurance package.
type Package struct {
	Code   string `json:"package_code"`
	Name   string `json:"package_name"`
	Reason string `json:"reason"`
}

// IsZero reports whether the package carries neither a code nor a name.
func (p Package) IsZero() bool {
	return p.Code == "" && p.Name == ""
}

// UnmarshalJSON implements json.Unmarshaler, accepting numeric codes.
func (p *Package) UnmarshalJSON(data []byte) error {
	var aux struct {
		Code   Text `json:"package_code"`
		Name   Text `json:"package_name"`
		Reason Text `json:"reason"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Package{Code: string(aux.Code), Name: string(aux.Name), Reason: string(aux.Reason)}
	return nil
}

// RejectedPackage is a candidate package the service ruled out.
type RejectedPackage struct {
	Code   string `json:"package_code"`
	Reason string `json:"reason"`
}

// UnmarshalJSON implements json.Unmarshaler, accepting numeric codes.
func (p *RejectedPackage) UnmarshalJSON(data []byte) error {
	var aux struct {
		Code   Text `json:"package_code"`
		Reason Text `json:"reason"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = RejectedPackage{Code: string(aux.Code), Reason: string(aux.Reason)}
	return nil
}

// Text is a string field that also accepts numbers, booleans and null.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text(asText(data))
	return nil
}

// TextList is a list of strings that tolerates non-string items by
// rendering them as compact JSON, and a single string in place of a list.
// Every item is kept in order, including empty strings.
type TextList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] != '[' {
		*l = TextList{asText(data)}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(TextList, 0, len(items))
	for _, item := range items {
		out = append(out, asText(item))
	}
	*l = out
	return nil
}

// Number is a JSON number that also accepts a numeric string.
type Number float64

// UnmarshalJSON implements json.Unmarshaler. Values that are not numeric
// decode as 0.
func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*n = Number(f)
			return nil
		}
	}
	*n = 0
	return nil
}

func asText(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}
