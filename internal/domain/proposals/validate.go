package proposals

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"coop-intake-go/internal/domain/validation"
	"coop-intake-go/pkg/textnorm"
)

var birthDatePattern = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// ValidateCPF checks length and both mod-11 check digits. Punctuation is ignored.
func ValidateCPF(value string) bool {
	digits := textnorm.Digits(value)
	if len(digits) != 11 {
		return false
	}
	if strings.Count(digits, digits[:1]) == 11 {
		return false
	}

	checkDigit := func(n int) int {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(digits[i]-'0') * (n + 1 - i)
		}
		rest := (sum * 10) % 11
		if rest == 10 || rest == 11 {
			rest = 0
		}
		return rest
	}

	return checkDigit(9) == int(digits[9]-'0') && checkDigit(10) == int(digits[10]-'0')
}

// ValidateBirthDate accepts DD/MM/YYYY for a real calendar date between 1900 and
// the current year of now.
func ValidateBirthDate(value string, now time.Time) bool {
	match := birthDatePattern.FindStringSubmatch(value)
	if match == nil {
		return false
	}

	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])

	if month < 1 || month > 12 {
		return false
	}
	if year < 1900 || year > now.Year() {
		return false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return date.Day() == day && int(date.Month()) == month && date.Year() == year
}

// NormalizePhone returns the phone with the Brazilian country code, as the
// messaging and CRM systems expect it.
func NormalizePhone(phone string) string {
	digits := textnorm.Digits(phone)
	if strings.HasPrefix(digits, "55") && len(digits) > 11 {
		return digits
	}
	return "55" + digits
}

func normalizeInput(input ProposalInput) ProposalInput {
	fields := []*string{
		&input.CampaignID, &input.ClientID, &input.FunctionID, &input.DDD,
		&input.CPF, &input.FullName, &input.RG, &input.RGIssuerState, &input.RGIssuer,
		&input.MotherName, &input.PIS, &input.BirthDate, &input.Gender, &input.Race,
		&input.MaritalStatus, &input.Nationality, &input.BirthState, &input.BirthCity,
		&input.CEP, &input.State, &input.City, &input.StreetType, &input.Street,
		&input.Number, &input.Neighborhood, &input.Complement,
		&input.Phone, &input.Email,
		&input.Bank, &input.AccountType, &input.Agency, &input.Account, &input.AccountDigit,
		&input.Education, &input.JobCategory, &input.Position, &input.ShirtSize,
		&input.CriterionLocation, &input.CriterionExperience, &input.CriterionAvailability,
	}
	for _, field := range fields {
		*field = strings.TrimSpace(*field)
	}
	return input
}

// Validate reports every failing field of an intake submission at once. Field
// keys follow the public form names.
func Validate(input ProposalInput, now time.Time) error {
	v := validation.New()

	minLen := func(field, value string, n int, msg string) {
		if utf8.RuneCountInString(value) < n {
			v.Add(field, msg)
		}
	}

	if !ValidateCPF(input.CPF) {
		v.Add("cpf", "CPF inválido")
	}

	minLen("nomeCompleto", input.FullName, 5, "Nome completo sem abreviações")
	if utf8.RuneCountInString(input.FullName) > 70 {
		v.Add("nomeCompleto", "Nome completo deve ter no máximo 70 caracteres")
	}
	minLen("nomeMae", input.MotherName, 5, "Nome da mãe obrigatório")
	if utf8.RuneCountInString(input.MotherName) > 70 {
		v.Add("nomeMae", "Nome da mãe deve ter no máximo 70 caracteres")
	}

	minLen("pis", input.PIS, 14, "PIS/NIT deve conter 11 dígitos")
	if !ValidateBirthDate(input.BirthDate, now) {
		v.Add("dataNascimento", "Data de nascimento inválida")
	}
	minLen("sexo", input.Gender, 1, "Selecione o sexo")
	minLen("corRaca", input.Race, 1, "Selecione a cor/raça")
	minLen("estadoCivil", input.MaritalStatus, 1, "Selecione o estado civil")
	minLen("nacionalidade", input.Nationality, 1, "Nacionalidade obrigatória")
	minLen("naturalidadeEstado", input.BirthState, 2, "Estado de naturalidade obrigatório")
	minLen("naturalidadeMunicipio", input.BirthCity, 2, "Município de naturalidade obrigatório")

	minLen("cep", input.CEP, 9, "CEP obrigatório")
	minLen("estado", input.State, 2, "Estado obrigatório")
	minLen("cidade", input.City, 2, "Cidade obrigatória")
	minLen("logradouroTipo", input.StreetType, 1, "Tipo de logradouro obrigatório")
	minLen("logradouroNome", input.Street, 3, "Logradouro obrigatório")
	minLen("numero", input.Number, 1, "Número obrigatório")
	minLen("bairro", input.Neighborhood, 2, "Bairro obrigatório")

	minLen("telefone", input.Phone, 14, "Telefone incompleto")
	if _, err := mail.ParseAddress(input.Email); err != nil || !strings.Contains(input.Email, "@") || strings.ContainsAny(input.Email, "<> ") {
		v.Add("email", "E-mail inválido")
	}

	minLen("escolaridade", input.Education, 1, "Selecione a escolaridade")
	minLen("categoriaFuncao", input.JobCategory, 1, "Selecione a categoria")
	minLen("tamanhoCamisa", input.ShirtSize, 1, "Selecione o tamanho da camisa")

	if input.AcceptedTerms == nil || !*input.AcceptedTerms {
		v.Add("aceiteConcordancia", "Você deve aceitar a concordância")
	}
	if input.AcceptedLGPD == nil || !*input.AcceptedLGPD {
		v.Add("aceiteLGPD", "Você deve aceitar os termos da LGPD")
	}
	minLen("criterioLocalidade", input.CriterionLocation, 1, "Responda sobre a localidade")
	minLen("criterioExperiencia", input.CriterionExperience, 1, "Responda sobre a experiência")
	minLen("criterioDisponibilidade", input.CriterionAvailability, 1, "Responda sobre a disponibilidade")

	return v.Err()
}
