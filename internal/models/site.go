package models

import (
	"slices"
	"strings"
	"unicode"
)

// PracticeArea is one of the cards shown in the "Áreas de Atuação" section.
type PracticeArea struct {
	Slug        string
	Title       string
	Description string
	Icon        string
}

// Stat is a headline number shown in the stats strip.
type Stat struct {
	Value string
	Label string
}

// Site holds the static content of the firm's page and the human contact channel referenced by the
// assistant's fallback copy.
type Site struct {
	Name          string
	Tagline       string
	WhatsApp      string
	PhoneDisplay  string
	Email         string
	Address       string
	Years         string
	Stats         []Stat
	PracticeAreas []PracticeArea
	ContactAreas  []string
}

// DefaultSite returns the firm's published content.
func DefaultSite() Site {
	return Site{
		Name:         "Trafer",
		Tagline:      "Advocacia & Consultoria",
		WhatsApp:     "5511999999999",
		PhoneDisplay: "(11) 99999-9999",
		Email:        "contato@traferadvocacia.com.br",
		Address:      "Av. Paulista, 1000 - SP",
		Years:        "+15 Anos",
		Stats: []Stat{
			{Value: "+2.500", Label: "Clientes Satisfeitos"},
			{Value: "98%", Label: "Sucesso Judicial"},
			{Value: "15", Label: "Anos de Atuação"},
			{Value: "+10", Label: "Especialistas"},
		},
		PracticeAreas: []PracticeArea{
			{
				Slug:        "trabalho",
				Title:       "Direito do Trabalho",
				Description: "Defesa dos direitos do trabalhador, verbas rescisórias, horas extras e reconhecimento de vínculo.",
				Icon:        "briefcase",
			},
			{
				Slug:        "previdenciario",
				Title:       "Direito Previdenciário",
				Description: "Aposentadorias, auxílio-doença, BPC/LOAS e revisões de benefícios junto ao INSS.",
				Icon:        "clock",
			},
			{
				Slug:        "civil",
				Title:       "Direito Civil",
				Description: "Indenizações por danos morais e materiais, contratos, cobranças e responsabilidade civil.",
				Icon:        "scale",
			},
			{
				Slug:        "familia",
				Title:       "Direito de Família",
				Description: "Divórcio, guarda de filhos, pensão alimentícia e inventários com agilidade e sigilo.",
				Icon:        "users",
			},
		},
		ContactAreas: []string{
			"Direito do Trabalho",
			"Previdenciário",
			"Civil e Família",
			"Outros",
		},
	}
}

// WhatsAppURL returns the wa.me deep link for the firm's number. Anything but digits is dropped from the
// configured number.
func (s Site) WhatsAppURL() string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s.WhatsApp)
	return "https://wa.me/" + digits
}

// HasContactArea reports whether area is one of the options offered by the contact form.
func (s Site) HasContactArea(area string) bool {
	return slices.Contains(s.ContactAreas, area)
}
