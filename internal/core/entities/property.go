package entities

import "github.com/JonMunkholm/estateadmin/internal/core"

const groupProperty = "Nieruchomość"

func init() {
	registerApartments()
	registerOccupancy()
	registerWaterMeterReadings()
}

func registerApartments() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:   "apartments",
			Label: "Lokale",
			Group: groupProperty,
			Table: "apartments",
		},
		Fields: []core.FieldSpec{
			{Name: "number", Type: core.FieldText, Required: true, Example: "12A",
				Aliases: []string{"numer lokalu", "nr lokalu", "lokal", "numer"}, Normalizer: NormalizeApartment},
			{Name: "building", Type: core.FieldText, Example: "B1", Aliases: []string{"budynek"}},
			{Name: "staircase", Type: core.FieldText, Example: "II", Aliases: []string{"klatka", "klatka schodowa"}},
			{Name: "floor", Type: core.FieldInteger, Example: "3", Aliases: []string{"piętro", "pietro", "kondygnacja"}},
			{Name: "area", Type: core.FieldNumeric, Required: true, Example: "54.30",
				Aliases: []string{"powierzchnia", "powierzchnia użytkowa", "metraż", "pow. [m2]", "m2"}},
			{Name: "rooms", Type: core.FieldInteger, Example: "3", Aliases: []string{"liczba pokoi", "pokoje"}},
			{Name: "share", Type: core.FieldNumeric, Example: "0.0125", Aliases: []string{"udział", "udzial", "udział w nieruchomości wspólnej"}},
			{Name: "kind", Type: core.FieldEnum, EnumValues: []string{"mieszkalny", "użytkowy", "garaż"},
				Aliases: []string{"rodzaj", "rodzaj lokalu", "typ lokalu"}},
		},
	})
}

func registerOccupancy() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:   "occupancy",
			Label: "Zamieszkanie",
			Group: groupProperty,
			Table: "occupancy",
		},
		Fields: []core.FieldSpec{
			{Name: "apartment_number", Type: core.FieldText, Required: true, Example: "12A",
				Aliases: []string{"lokal", "nr lokalu", "numer lokalu"}, Normalizer: NormalizeApartment},
			{Name: "residents", Type: core.FieldInteger, Required: true, Example: "2",
				Aliases: []string{"liczba osób", "liczba osob", "osoby zamieszkałe", "mieszkańcy"}},
			{Name: "valid_from", Type: core.FieldDate, Required: true, Example: "2024-01-01",
				Aliases: []string{"od", "data od", "obowiązuje od"}},
			{Name: "valid_to", Type: core.FieldDate, Example: "2024-12-31", Aliases: []string{"do", "data do", "obowiązuje do"}},
			{Name: "declared_by", Type: core.FieldText, Example: "Jan Kowalski", Aliases: []string{"zgłaszający", "deklarujący"}},
		},
	})
}

func registerWaterMeterReadings() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:   "water_meter_readings",
			Label: "Odczyty wodomierzy",
			Group: groupProperty,
			Table: "water_meter_readings",
		},
		Fields: []core.FieldSpec{
			{Name: "apartment_number", Type: core.FieldText, Required: true, Example: "12A",
				Aliases: []string{"lokal", "nr lokalu", "numer lokalu"}, Normalizer: NormalizeApartment},
			{Name: "meter_serial", Type: core.FieldText, Required: true, Example: "WM-2024-0012",
				Aliases: []string{"numer wodomierza", "nr wodomierza", "nr licznika", "wodomierz"}},
			{Name: "water_kind", Type: core.FieldEnum, Required: true, EnumValues: []string{"zimna", "ciepła"},
				Aliases: []string{"rodzaj", "rodzaj wody", "typ wody"}},
			{Name: "reading_date", Type: core.FieldDate, Required: true, Example: "2024-03-31",
				Aliases: []string{"data odczytu", "data"}},
			{Name: "value", Type: core.FieldNumeric, Required: true, Example: "123.456",
				Aliases: []string{"stan", "odczyt", "wskazanie", "stan licznika"}},
			{Name: "estimated", Type: core.FieldBool, Example: "nie", Aliases: []string{"szacowany", "odczyt szacunkowy"}},
		},
	})
}
