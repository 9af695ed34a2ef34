package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteForm struct {
	Name        string `json:"name" binding:"required,max=8,blobkey"`
	Description string `json:"description" binding:"required"`
}

func TestIsBlobKey(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Trip", true},
		{"Trip 2024", true},
		{"旅行", true},
		{"a/b", false},
		{`a\b`, false},
		{"..", false},
		{" . ", false},
		{"tab\there", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBlobKey(tt.in), tt.in)
	}
}

func TestValidateStruct(t *testing.T) {
	v := NewCustomValidator()
	require.NoError(t, RegisterCustom(v.Engine().(*validator.Validate)))

	assert.NoError(t, v.ValidateStruct(&noteForm{Name: "Trip", Description: "x"}))
	assert.NoError(t, v.ValidateStruct(nil))
	assert.NoError(t, v.ValidateStruct(42))

	err := v.ValidateStruct(noteForm{Name: "a/b", Description: "x"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, TagBlobKey, verrs[0].Tag())

	err = v.ValidateStruct([]*noteForm{{Name: "ok", Description: "x"}, {Name: "toolongname"}})
	var serrs binding.SliceValidationError
	require.ErrorAs(t, err, &serrs)
	assert.Len(t, serrs, 1)
}

func TestInitTranslations(t *testing.T) {
	uni, err := Init()
	require.NoError(t, err)

	validate := binding.Validator.Engine().(*validator.Validate)
	err = validate.Struct(&noteForm{Name: "a/b"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	enTran, _ := uni.GetTranslator("en")
	en := verrs.Translate(enTran)
	assert.Equal(t, "name must not contain slashes or control characters", en["noteForm.name"])
	assert.Equal(t, "description is a required field", en["noteForm.description"])

	zhTran, _ := uni.GetTranslator("zh")
	zh := verrs.Translate(zhTran)
	assert.Equal(t, "name不能包含斜杠或控制字符", zh["noteForm.name"])
}
