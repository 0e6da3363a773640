package entities

import "github.com/JonMunkholm/estateadmin/internal/core"

func init() {
	registerOwners()
}

func registerOwners() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:   "owners",
			Label: "Właściciele",
			Group: "Osoby",
			Table: "owners",
		},
		Fields: []core.FieldSpec{
			{Name: "first_name", Type: core.FieldText, Required: true, Example: "Jan", Aliases: []string{"imię", "imie"}},
			{Name: "last_name", Type: core.FieldText, Required: true, Example: "Kowalski", Aliases: []string{"nazwisko"}},
			{Name: "pesel", Type: core.FieldText, Example: "44051401359", Aliases: []string{"nr pesel"}, Normalizer: NormalizePESEL},
			{Name: "email", Type: core.FieldText, Example: "jan.kowalski@example.pl", Aliases: []string{"e-mail", "adres e-mail", "adres email"}},
			{Name: "phone", Type: core.FieldText, Example: "+48600100200",
				Aliases: []string{"telefon", "nr telefonu", "numer telefonu"}, Normalizer: NormalizePhone},
			{Name: "street", Type: core.FieldText, Example: "ul. Piękna 5", Aliases: []string{"ulica", "adres", "adres korespondencyjny"}},
			{Name: "city", Type: core.FieldText, Example: "Kraków", Aliases: []string{"miejscowość", "miejscowosc", "miasto"}},
			{Name: "postal_code", Type: core.FieldText, Example: "30-001",
				Aliases: []string{"kod pocztowy", "kod"}, Normalizer: NormalizePostalCode},
			{Name: "apartment_number", Type: core.FieldText, Example: "12A",
				Aliases: []string{"lokal", "nr lokalu"}, Normalizer: NormalizeApartment},
		},
	})
}
