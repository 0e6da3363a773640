package entities

import "github.com/JonMunkholm/estateadmin/internal/core"

const groupFinance = "Finanse"

func init() {
	registerBankAccounts()
	registerTransactions()
	registerPrices()
}

func registerBankAccounts() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:   "bank_accounts",
			Label: "Rachunki bankowe",
			Group: groupFinance,
			Table: "bank_accounts",
		},
		Fields: []core.FieldSpec{
			{Name: "iban", Type: core.FieldText, Required: true, Example: "PL61109010140000071219812874",
				Aliases: []string{"numer konta", "nr konta", "numer rachunku", "nr rachunku", "rachunek"}, Normalizer: NormalizeIBAN},
			{Name: "bank_name", Type: core.FieldText, Example: "Bank Przykładowy", Aliases: []string{"bank", "nazwa banku"}},
			{Name: "holder", Type: core.FieldText, Example: "Wspólnota Mieszkaniowa Piękna 5",
				Aliases: []string{"właściciel", "posiadacz", "posiadacz rachunku"}},
			{Name: "purpose", Type: core.FieldEnum, EnumValues: []string{"eksploatacja", "fundusz remontowy", "inne"},
				Aliases: []string{"cel", "przeznaczenie"}},
			{Name: "is_default", Type: core.FieldBool, Example: "tak", Aliases: []string{"domyślny", "główny"}},
		},
	})
}

func registerTransactions() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:   "transactions",
			Label: "Transakcje",
			Group: groupFinance,
			Table: "transactions",
		},
		Fields: []core.FieldSpec{
			{Name: "booking_date", Type: core.FieldDate, Required: true, Example: "2024-03-10",
				Aliases: []string{"data księgowania", "data ksiegowania", "data operacji", "data"}},
			{Name: "amount", Type: core.FieldNumeric, Required: true, Example: "450.00", Aliases: []string{"kwota", "wartość"}},
			{Name: "direction", Type: core.FieldEnum, Required: true, EnumValues: []string{"wpływ", "wypływ"},
				Aliases: []string{"kierunek", "typ operacji"}},
			{Name: "counterparty", Type: core.FieldText, Example: "Jan Kowalski",
				Aliases: []string{"kontrahent", "nadawca/odbiorca", "nadawca", "odbiorca"}},
			{Name: "title", Type: core.FieldText, Example: "Zaliczka marzec lokal 12A",
				Aliases: []string{"tytuł", "tytul", "tytuł przelewu", "opis"}},
			{Name: "account_iban", Type: core.FieldText, Example: "PL61109010140000071219812874",
				Aliases: []string{"rachunek", "nr rachunku"}, Normalizer: NormalizeIBAN},
			{Name: "apartment_number", Type: core.FieldText, Example: "12A",
				Aliases: []string{"lokal", "nr lokalu"}, Normalizer: NormalizeApartment},
		},
	})
}

func registerPrices() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:   "prices",
			Label: "Cennik",
			Group: groupFinance,
			Table: "prices",
		},
		Fields: []core.FieldSpec{
			{Name: "name", Type: core.FieldText, Required: true, Example: "Fundusz remontowy",
				Aliases: []string{"nazwa", "składnik", "skladnik", "pozycja"}},
			{Name: "unit", Type: core.FieldEnum, Required: true, EnumValues: []string{"m2", "osoba", "lokal", "m3"},
				Aliases: []string{"jednostka", "jm", "j.m."}},
			{Name: "unit_price", Type: core.FieldNumeric, Required: true, Example: "2.50",
				Aliases: []string{"cena", "stawka", "cena jednostkowa"}},
			{Name: "vat_rate", Type: core.FieldNumeric, Example: "8", Aliases: []string{"vat", "stawka vat"}},
			{Name: "valid_from", Type: core.FieldDate, Required: true, Example: "2024-01-01",
				Aliases: []string{"obowiązuje od", "od", "data od"}},
		},
	})
}
