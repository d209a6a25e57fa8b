package crm

import (
	"sort"
	"strings"

	"coop-intake-go/internal/domain/campaigns"
	"coop-intake-go/internal/domain/proposals"
	"coop-intake-go/pkg/textnorm"
)

const (
	MissingValue     = "nao coletado"
	UnresolvedCity   = "0000000"
	placeholderName  = "placeholder.txt"
	defaultGender    = "OUTRO"
	defaultMarital   = "SOLTEIRO"
	defaultEducation = "MEDIO_COMPLETO"
)

// CityResolver maps a state and city name to the municipality code.
type CityResolver interface {
	Code(state, city string) (string, bool)
}

type field struct {
	Name  string
	Value string
}

type rule struct {
	all    []string
	any    []string
	result string
}

func (r rule) matches(value string) bool {
	for _, needle := range r.all {
		if !strings.Contains(value, needle) {
			return false
		}
	}
	if len(r.any) == 0 {
		return true
	}
	for _, needle := range r.any {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}

var genderRules = []rule{
	{any: []string{"MASC"}, result: "MASCULINO"},
	{any: []string{"FEM"}, result: "FEMININO"},
}

var maritalRules = []rule{
	{any: []string{"SOLT"}, result: "SOLTEIRO"},
	{any: []string{"CASAD"}, result: "CASADO"},
	{any: []string{"DIVOR"}, result: "DIVORCIADO"},
	{any: []string{"VIUV"}, result: "VIUVO"},
	{any: []string{"UNIAO", "ESTAVEL"}, result: "UNIAO_ESTAVEL"},
	{any: []string{"SEPAR"}, result: "SEPARADO"},
}

var educationRules = []rule{
	{any: []string{"DOUTOR"}, result: "DOUTORADO"},
	{any: []string{"MESTR"}, result: "MESTRADO"},
	{any: []string{"ESPECIALIZ", "POS"}, result: "POS_GRADUACAO"},
	{all: []string{"SUPERIOR", "INCOMPLETO"}, result: "SUPERIOR_INCOMPLETO"},
	{all: []string{"SUPERIOR"}, result: "SUPERIOR_COMPLETO"},
	{all: []string{"MEDIO", "INCOMPLETO"}, result: "MEDIO_INCOMPLETO"},
	{all: []string{"MEDIO"}, result: "MEDIO_COMPLETO"},
	{all: []string{"FUNDAMENTAL", "INCOMPLETO"}, result: "FUNDAMENTAL_INCOMPLETO"},
	{all: []string{"FUNDAMENTAL"}, result: "FUNDAMENTAL_COMPLETO"},
	{any: []string{"SEM"}, result: "SEM_ESCOLARIDADE"},
}

func translate(value string, rules []rule, fallback string) string {
	normalized := textnorm.Upper(value)
	if normalized == "" {
		return fallback
	}
	for _, r := range rules {
		if r.matches(normalized) {
			return r.result
		}
	}
	return fallback
}

func MapGender(value string) string {
	return translate(value, genderRules, defaultGender)
}

func MapMaritalStatus(value string) string {
	return translate(value, maritalRules, defaultMarital)
}

func MapEducation(value string) string {
	return translate(value, educationRules, defaultEducation)
}

// ResolveContractID prefers the campaign's client id and returns "" when the
// result is a placeholder the CRM would reject.
func ResolveContractID(proposal proposals.Proposal, campaign *campaigns.Campaign) string {
	id := strings.TrimSpace(proposal.ClientID)
	if campaign != nil && campaign.ID != campaigns.Uncategorized && strings.TrimSpace(campaign.ClientID) != "" {
		id = strings.TrimSpace(campaign.ClientID)
	}
	switch id {
	case "", "0", "00":
		return ""
	}
	return id
}

func resolveFunctionID(proposal proposals.Proposal, campaign *campaigns.Campaign) string {
	if id := strings.TrimSpace(proposal.FunctionID); id != "" {
		return id
	}
	if campaign != nil {
		return strings.TrimSpace(campaign.FunctionID)
	}
	return ""
}

func cityCode(cities CityResolver, state, city string) string {
	if cities == nil {
		return UnresolvedCity
	}
	if code, ok := cities.Code(state, city); ok {
		return code
	}
	return UnresolvedCity
}

func orMissing(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return MissingValue
	}
	return value
}

func textFields(sub proposals.Submission, cities CityResolver) []field {
	p := sub.Proposal
	fields := []field{
		{"Name", orMissing(p.FullName)},
		{"Cpf", orMissing(textnorm.Digits(p.CPF))},
		{"Rg", orMissing(p.RG)},
		{"RgIssuer", orMissing(p.RGIssuer)},
		{"RgIssuerState", orMissing(p.RGIssuerState)},
		{"MotherName", orMissing(p.MotherName)},
		{"Pis", orMissing(textnorm.Digits(p.PIS))},
		{"BirthDate", orMissing(p.BirthDate)},
		{"Gender", MapGender(p.Gender)},
		{"Race", orMissing(p.Race)},
		{"MaritalStatus", MapMaritalStatus(p.MaritalStatus)},
		{"Nationality", orMissing(p.Nationality)},
		{"BirthState", orMissing(p.BirthState)},
		{"BirthCityCode", cityCode(cities, p.BirthState, p.BirthCity)},
		{"ZipCode", orMissing(textnorm.Digits(p.CEP))},
		{"State", orMissing(p.State)},
		{"CityCode", cityCode(cities, p.State, p.City)},
		{"StreetType", orMissing(p.StreetType)},
		{"Street", orMissing(p.Street)},
		{"Number", orMissing(p.Number)},
		{"Neighborhood", orMissing(p.Neighborhood)},
		{"Complement", orMissing(p.Complement)},
		{"Phone", proposals.NormalizePhone(p.Phone)},
		{"Email", orMissing(p.Email)},
		{"Education", MapEducation(p.Education)},
		{"JobCategory", orMissing(p.JobCategory)},
		{"Position", orMissing(p.Position)},
		{"ShirtSize", orMissing(p.ShirtSize)},
		{"CriterionLocation", orMissing(p.CriterionLocation)},
		{"CriterionExperience", orMissing(p.CriterionExperience)},
		{"CriterionAvailability", orMissing(p.CriterionAvailability)},
		{"FunctionId", orMissing(resolveFunctionID(p, sub.Campaign))},
	}
	if contractID := ResolveContractID(p, sub.Campaign); contractID != "" {
		fields = append(fields, field{"ContractId", contractID})
	}
	fields = append(fields, field{"ExternalReference", p.ID})
	return fields
}

var fileFields = map[proposals.DocumentType]string{
	proposals.DocumentIdentityFront:    "DocumentFront",
	proposals.DocumentIdentityBack:     "DocumentBack",
	proposals.DocumentDriverLicense:    "DriverLicense",
	proposals.DocumentProofOfResidence: "ProofOfResidence",
	proposals.DocumentProofOfPIS:       "ProofOfPis",
	proposals.DocumentCivilCertificate: "Certificate",
	proposals.DocumentResume:           "Resume",
	proposals.DocumentDiploma:          "Diploma",
}

var mandatoryFileFields = []string{"DocumentFront", "ProofOfResidence"}

// latestPerType returns one document per mapped type, the most recently
// uploaded, ordered by CRM field name.
func latestPerType(docs []proposals.Document) []proposals.Document {
	latest := make(map[proposals.DocumentType]proposals.Document)
	for _, doc := range docs {
		if _, mapped := fileFields[doc.Type]; !mapped {
			continue
		}
		current, ok := latest[doc.Type]
		if !ok || doc.UploadedAt.After(current.UploadedAt) {
			latest[doc.Type] = doc
		}
	}

	result := make([]proposals.Document, 0, len(latest))
	for _, doc := range latest {
		result = append(result, doc)
	}
	sort.Slice(result, func(i, j int) bool {
		return fileFields[result[i].Type] < fileFields[result[j].Type]
	})
	return result
}
