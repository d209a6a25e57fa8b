package proposals

import (
	"errors"
	"testing"
	"time"

	"coop-intake-go/internal/domain/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCPF(t *testing.T) {
	cases := map[string]bool{
		"529.982.247-25": true,
		"52998224725":    true,
		"111.444.777-35": true,
		"529.982.247-26": false,
		"111.111.111-11": false,
		"000.000.000-00": false,
		"5299822472":     false,
		"":               false,
	}
	for value, want := range cases {
		assert.Equal(t, want, ValidateCPF(value), value)
	}
}

func TestValidateBirthDate(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	cases := map[string]bool{
		"15/03/1990": true,
		"29/02/2024": true,
		"29/02/2023": false,
		"31/04/1990": false,
		"01/13/1990": false,
		"01/01/1899": false,
		"01/01/2027": false,
		"1990-03-15": false,
		"1/3/1990":   false,
	}
	for value, want := range cases {
		assert.Equal(t, want, ValidateBirthDate(value, now), value)
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "5511987654321", NormalizePhone("(11) 98765-4321"))
	assert.Equal(t, "5511987654321", NormalizePhone("+55 11 98765-4321"))
	assert.Equal(t, "5555987654321", NormalizePhone("(55) 98765-4321"))
}

func TestValidateReportsEveryFailingField(t *testing.T) {
	input := validInput()
	input.CPF = "111.111.111-11"
	input.Email = "not-an-email"
	input.BirthDate = "31/02/1990"
	input.AcceptedLGPD = nil
	input.CriterionExperience = ""

	err := Validate(normalizeInput(input), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	for _, field := range []string{"cpf", "email", "dataNascimento", "aceiteLGPD", "criterioExperiencia"} {
		assert.True(t, verr.Has(field), field)
	}
	assert.Len(t, verr.Fields, 5)
}

func TestValidateRejectsFalseConsent(t *testing.T) {
	input := validInput()
	no := false
	input.AcceptedTerms = &no

	err := Validate(input, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("aceiteConcordancia"))
}

func TestValidateNameLength(t *testing.T) {
	input := validInput()
	input.FullName = "Ana"
	input.MotherName = "Maria da Silva Pereira Souza Oliveira Santos Lima Costa Almeida Ferreira Rodrigues"

	err := Validate(input, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("nomeCompleto"))
	assert.True(t, verr.Has("nomeMae"))
}

func validInput() ProposalInput {
	yes := true
	return ProposalInput{
		CPF:                   "529.982.247-25",
		FullName:              "Maria Aparecida da Silva",
		RG:                    "12.345.678-9",
		RGIssuerState:         "SP",
		RGIssuer:              "SSP",
		MotherName:            "Joana da Silva",
		PIS:                   "123.45678.90-1",
		BirthDate:             "15/03/1990",
		Gender:                "Feminino",
		Race:                  "Parda",
		MaritalStatus:         "Casada",
		Nationality:           "Brasileira",
		BirthState:            "SP",
		BirthCity:             "São Paulo",
		CEP:                   "01310-100",
		State:                 "SP",
		City:                  "São Paulo",
		StreetType:            "Avenida",
		Street:                "Paulista",
		Number:                "1000",
		Neighborhood:          "Bela Vista",
		Phone:                 "(11) 98765-4321",
		Email:                 "maria@example.com",
		Education:             "Ensino Médio Completo",
		JobCategory:           "Saúde",
		Position:              "Técnico de Enfermagem",
		ShirtSize:             "M",
		AcceptedTerms:         &yes,
		AcceptedLGPD:          &yes,
		CriterionLocation:     "sim",
		CriterionExperience:   "2 anos",
		CriterionAvailability: "integral",
	}
}
