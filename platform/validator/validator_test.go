package validator

import "testing"

type sample struct {
	Name  string `validate:"required,notblank"`
	Email string `validate:"omitempty,email"`
	Type  string `validate:"oneof=neuro msk"`
}

func TestStruct(t *testing.T) {
	v := New()
	tests := []struct {
		name    string
		in      sample
		wantErr bool
	}{
		{name: "valid", in: sample{Name: "Jane", Email: "jane@x.com", Type: "msk"}},
		{name: "blank name", in: sample{Name: "   ", Type: "msk"}, wantErr: true},
		{name: "bad email", in: sample{Name: "Jane", Email: "nope", Type: "neuro"}, wantErr: true},
		{name: "bad template", in: sample{Name: "Jane", Type: "cardio"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Struct() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
