package crm

import (
	"testing"
	"time"

	"coop-intake-go/internal/domain/campaigns"
	"coop-intake-go/internal/domain/proposals"
	"github.com/stretchr/testify/assert"
)

type mapCities map[string]string

func (m mapCities) Code(state, city string) (string, bool) {
	code, ok := m[state+"-"+city]
	return code, ok
}

func TestMapGender(t *testing.T) {
	for _, value := range []string{"masculino", "MASCULINO", "Masc"} {
		assert.Equal(t, "MASCULINO", MapGender(value), value)
	}
	assert.Equal(t, "FEMININO", MapGender("Feminino"))
	assert.Equal(t, "OUTRO", MapGender("xyz"))
	assert.Equal(t, "OUTRO", MapGender(""))
}

func TestMapMaritalStatus(t *testing.T) {
	cases := map[string]string{
		"Solteira":      "SOLTEIRO",
		"casado":        "CASADO",
		"Divorciada":    "DIVORCIADO",
		"Viúva":         "VIUVO",
		"União Estável": "UNIAO_ESTAVEL",
		"Separado":      "SEPARADO",
		"outro":         "SOLTEIRO",
	}
	for input, want := range cases {
		assert.Equal(t, want, MapMaritalStatus(input), input)
	}
}

func TestMapEducation(t *testing.T) {
	cases := map[string]string{
		"Doutorado":                   "DOUTORADO",
		"Mestrado":                    "MESTRADO",
		"Pós-graduação":               "POS_GRADUACAO",
		"Superior Incompleto":         "SUPERIOR_INCOMPLETO",
		"Ensino Superior Completo":    "SUPERIOR_COMPLETO",
		"Ensino Médio Incompleto":     "MEDIO_INCOMPLETO",
		"Ensino Médio Completo":       "MEDIO_COMPLETO",
		"Fundamental Incompleto":      "FUNDAMENTAL_INCOMPLETO",
		"Ensino Fundamental Completo": "FUNDAMENTAL_COMPLETO",
		"Sem escolaridade":            "SEM_ESCOLARIDADE",
		"não informado":               "MEDIO_COMPLETO",
	}
	for input, want := range cases {
		assert.Equal(t, want, MapEducation(input), input)
	}
}

func TestResolveContractID(t *testing.T) {
	proposal := proposals.Proposal{ClientID: "stored"}

	assert.Equal(t, "stored", ResolveContractID(proposal, nil))
	assert.Equal(t, "from-campaign", ResolveContractID(proposal, &campaigns.Campaign{ID: "c1", ClientID: "from-campaign"}))
	assert.Equal(t, "stored", ResolveContractID(proposal, &campaigns.Campaign{ID: campaigns.Uncategorized, ClientID: "ignored"}))

	for _, placeholder := range []string{"", "0", "00"} {
		assert.Empty(t, ResolveContractID(proposals.Proposal{ClientID: placeholder}, nil), placeholder)
	}
}

func TestTextFieldsDefaults(t *testing.T) {
	sub := proposals.Submission{Proposal: proposals.Proposal{
		ID:         "p-1",
		FullName:   "Maria da Silva",
		CPF:        "529.982.247-25",
		CEP:        "01310-100",
		Phone:      "(11) 98765-4321",
		State:      "SP",
		City:       "São Paulo",
		BirthState: "SP",
		BirthCity:  "Atlantis",
		ClientID:   "0",
	}}
	cities := mapCities{"SP-São Paulo": "3550308"}

	values := make(map[string]string)
	for _, f := range textFields(sub, cities) {
		values[f.Name] = f.Value
	}

	assert.Equal(t, "52998224725", values["Cpf"])
	assert.Equal(t, "01310100", values["ZipCode"])
	assert.Equal(t, "5511987654321", values["Phone"])
	assert.Equal(t, "3550308", values["CityCode"])
	assert.Equal(t, UnresolvedCity, values["BirthCityCode"])
	assert.Equal(t, MissingValue, values["MotherName"])
	assert.Equal(t, MissingValue, values["Complement"])
	assert.Equal(t, "OUTRO", values["Gender"])
	assert.Equal(t, "p-1", values["ExternalReference"])
	_, hasContract := values["ContractId"]
	assert.False(t, hasContract)
}

func TestLatestPerTypePicksNewestUpload(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := []proposals.Document{
		{ID: "new", Type: proposals.DocumentIdentityFront, UploadedAt: base.Add(time.Hour)},
		{ID: "old", Type: proposals.DocumentIdentityFront, UploadedAt: base},
		{ID: "unknown", Type: "passaporte", UploadedAt: base},
		{ID: "pis", Type: proposals.DocumentProofOfPIS, UploadedAt: base},
	}

	picked := latestPerType(docs)

	ids := make([]string, 0, len(picked))
	for _, doc := range picked {
		ids = append(ids, doc.ID)
	}
	assert.Equal(t, []string{"new", "pis"}, ids)
}

func TestFitWithin(t *testing.T) {
	w, h := fitWithin(2560, 1440, 1280)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)

	w, h = fitWithin(1000, 3000, 1280)
	assert.Equal(t, 426, w)
	assert.Equal(t, 1280, h)

	w, h = fitWithin(800, 600, 1280)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}
