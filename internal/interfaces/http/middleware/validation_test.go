package middleware

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cart struct {
	Name  string `json:"customer_name" binding:"max=3"`
	Email string `json:"customer_email" binding:"omitempty,email"`
	Items []line `json:"items" binding:"required,dive"`
}

type line struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"gte=1"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	t.Run("names fields by json path", func(t *testing.T) {
		err := binding.Validator.ValidateStruct(&cart{
			Name:  "toolong",
			Email: "nope",
			Items: []line{{ProductID: 0, Quantity: 0}},
		})
		require.Error(t, err)

		details := ValidationDetails(err)
		fields := map[string]string{}
		for _, d := range details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Ensure this field has no more than 3 characters.", fields["customer_name"])
		assert.Equal(t, "Enter a valid email address.", fields["customer_email"])
		assert.Equal(t, "This field is required.", fields["items[0].product_id"])
		assert.Contains(t, fields, "items[0].quantity")
	})

	t.Run("other errors", func(t *testing.T) {
		assert.Nil(t, ValidationDetails(errors.New("unexpected EOF")))
	})
}
