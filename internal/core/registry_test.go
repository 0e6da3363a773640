package core

import "testing"

func TestRegistry(t *testing.T) {
	def, ok := Get("test_flats")
	if !ok {
		t.Fatal("test_flats not registered")
	}
	if def.Info.Table != "test_flats" {
		t.Errorf("Table = %q", def.Info.Table)
	}
	if _, ok := Get("missing"); ok {
		t.Error("Get returned an unregistered entity")
	}
}

func TestRegister_Panics(t *testing.T) {
	tests := []struct {
		name string
		def  EntityDefinition
	}{
		{"duplicate key", flatsEntity},
		{"no table", EntityDefinition{Info: EntityInfo{Key: "x"}, Fields: flatsEntity.Fields}},
		{"no fields", EntityDefinition{Info: EntityInfo{Key: "y", Table: "y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register did not panic")
				}
			}()
			Register(tt.def)
		})
	}
}

func TestFieldSpec_DBColumn(t *testing.T) {
	if got := (FieldSpec{Name: "area"}).DBColumn(); got != "area" {
		t.Errorf("DBColumn = %q", got)
	}
	if got := (FieldSpec{Name: "area", Column: "area_m2"}).DBColumn(); got != "area_m2" {
		t.Errorf("DBColumn = %q", got)
	}
}
