package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
)

var cpfPattern = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$|^\d{11}$`)

// bcryptMaxBytes is the longest input bcrypt accepts.
const bcryptMaxBytes = 72

var fieldLabels = map[string]string{
	"login":      "Login",
	"senha":      "Senha",
	"grupo":      "Grupo",
	"nome":       "Nome",
	"email":      "Email",
	"cpf":        "CPF",
	"senhaAtual": "Senha atual",
	"novaSenha":  "Nova senha",
	"token":      "Token",
	"situacao":   "Situação",
	"telefone":   "Telefone",
	"cep":        "CEP",
}

// NewValidator returns a validator reporting JSON field names and knowing the cpf rule.
func NewValidator() *validator.Validate {
	v := validator.New()
	prepareValidator(v)
	return v
}

func prepareValidator(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return cpfPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= bcryptMaxBytes
	})
}

// normalizeLogin is the canonical form of a login: trimmed and lower case.
func normalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

// cpfDigits drops the punctuation of a formatted CPF.
func cpfDigits(cpf string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, cpf)
}

// validationError turns validator output into a 400 listing every failed field.
func validationError(err error) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	msg := appErrors.ErrValidation.Message + ": " + strings.Join(messages, ", ")
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", label)
	case "min":
		return fmt.Sprintf("%s deve ter pelo menos %s caracteres", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s deve ser um dos valores: %s", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "email":
		return fmt.Sprintf("%s deve ser um email válido", label)
	case "bcryptmax":
		return fmt.Sprintf("%s deve ter no máximo %d bytes", label, bcryptMaxBytes)
	case "cpf":
		return "CPF deve estar no formato 000.000.000-00 ou apenas números"
	default:
		return fmt.Sprintf("%s é inválido", label)
	}
}

// validateStruct runs v against payload and translates the outcome.
func validateStruct(v *validator.Validate, payload interface{}) error {
	if err := v.Struct(payload); err != nil {
		return validationError(err)
	}
	return nil
}
