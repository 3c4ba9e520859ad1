package validation

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gearguard/internal/dto"
)

func TestCustomValidator_CreateRequest(t *testing.T) {
	v := New()
	date, badDate := "2026-03-17", "17.03.2026"
	valid := dto.CreateRequestDTO{
		Subject:       "Замена подшипника",
		Type:          "preventive",
		EquipmentID:   "3f2b9f5e-8c55-4a47-9d1e-0b6f7d8a1c22",
		ScheduledDate: &date,
	}
	require.NoError(t, v.Validate(&valid))

	tests := []struct {
		name   string
		mutate func(d *dto.CreateRequestDTO)
	}{
		{"короткая тема", func(d *dto.CreateRequestDTO) { d.Subject = "ab" }},
		{"неизвестный тип", func(d *dto.CreateRequestDTO) { d.Type = "emergency" }},
		{"не uuid", func(d *dto.CreateRequestDTO) { d.EquipmentID = "42" }},
		{"неизвестный приоритет", func(d *dto.CreateRequestDTO) { d.Priority = "critical" }},
		{"дата в другом формате", func(d *dto.CreateRequestDTO) { d.ScheduledDate = &badDate }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			assert.Error(t, v.Validate(&d))
		})
	}
}

func TestCustomValidator_NullTypes(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&dto.UpdateRequestDTO{}))
	assert.NoError(t, v.Validate(&dto.UpdateRequestDTO{Priority: null.StringFrom("urgent")}))
	assert.Error(t, v.Validate(&dto.UpdateRequestDTO{Priority: null.StringFrom("critical")}))
	assert.Error(t, v.Validate(&dto.UpdateRequestDTO{HoursSpent: null.Float64From(-1)}))
	assert.NoError(t, v.Validate(&dto.UpdateEquipmentDTO{Status: null.StringFrom("under_repair")}))
	assert.Error(t, v.Validate(&dto.UpdateEquipmentDTO{Status: null.StringFrom("broken")}))
	assert.Error(t, v.Validate(&dto.UpdateTeamDTO{Color: null.StringFrom("blue")}))
}

func fileHeader(t *testing.T, name string, content []byte) (*multipart.FileHeader, multipart.File) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	header := form.File["file"][0]
	file, err := header.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })
	return header, file
}

func TestValidateFile(t *testing.T) {
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	header, file := fileHeader(t, "equipment.xlsx", buf.Bytes())
	assert.NoError(t, ValidateFile(header, file, "equipment_import"))

	header, file = fileHeader(t, "equipment.csv", []byte("name,serial_number\nPress,SN-1\n"))
	assert.Error(t, ValidateFile(header, file, "equipment_import"))

	assert.Error(t, ValidateFile(header, file, "avatars"))
}
