package harvest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/harvest"
)

func TestParseConstraints(t *testing.T) {
	t.Parallel()

	t.Run("price bound with amount-first currency", func(t *testing.T) {
		t.Parallel()
		constraints, warnings := harvest.ParseConstraints("Find all products under 950zł")
		require.Len(t, constraints, 1)
		assert.Empty(t, warnings)

		c := constraints[0]
		assert.Equal(t, harvest.ConstraintNumeric, c.Kind)
		assert.Equal(t, harvest.FieldPrice, c.Field)
		assert.Equal(t, harvest.CmpLt, c.Cmp)
		assert.Equal(t, 950.0, c.Value)
		assert.Equal(t, "PLN", c.Unit)
	})

	t.Run("weight bound normalized to grams", func(t *testing.T) {
		t.Parallel()
		constraints, warnings := harvest.ParseConstraints("Find all products under 100g")
		require.Len(t, constraints, 1)
		assert.Empty(t, warnings)

		c := constraints[0]
		assert.Equal(t, harvest.FieldWeight, c.Field)
		assert.Equal(t, harvest.CmpLt, c.Cmp)
		assert.Equal(t, 100.0, c.Value)
		assert.Equal(t, "g", c.Unit)
	})

	t.Run("kilograms convert to the gram base", func(t *testing.T) {
		t.Parallel()
		constraints, _ := harvest.ParseConstraints("items over 2kg")
		require.Len(t, constraints, 1)
		assert.Equal(t, harvest.FieldWeight, constraints[0].Field)
		assert.Equal(t, harvest.CmpGt, constraints[0].Cmp)
		assert.Equal(t, 2000.0, constraints[0].Value)
	})

	t.Run("comparator cues", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			text string
			want harvest.Comparator
		}{
			{"priced at most $30", harvest.CmpLte},
			{"no more than 20 usd", harvest.CmpLte},
			{"at least 500ml", harvest.CmpGte},
			{"cheaper than 50 eur", harvest.CmpLt},
			{"more than 10 usd", harvest.CmpGt},
			{"exactly 250g", harvest.CmpEq},
		}
		for _, tt := range tests {
			t.Run(tt.text, func(t *testing.T) {
				t.Parallel()
				constraints, warnings := harvest.ParseConstraints(tt.text)
				require.Len(t, constraints, 1, "text: %q", tt.text)
				assert.Empty(t, warnings)
				assert.Equal(t, tt.want, constraints[0].Cmp, "text: %q", tt.text)
			})
		}
	})

	t.Run("marker-first price", func(t *testing.T) {
		t.Parallel()
		constraints, _ := harvest.ParseConstraints("show items below $1,299.99")
		require.Len(t, constraints, 1)
		assert.Equal(t, harvest.FieldPrice, constraints[0].Field)
		assert.Equal(t, harvest.CmpLt, constraints[0].Cmp)
		assert.Equal(t, 1299.99, constraints[0].Value)
		assert.Equal(t, "USD", constraints[0].Unit)
	})

	t.Run("negation claims the following word", func(t *testing.T) {
		t.Parallel()
		constraints, warnings := harvest.ParseConstraints("Find red mugs without cords")
		assert.Empty(t, warnings)
		require.Len(t, constraints, 2)

		assert.Equal(t, harvest.ConstraintKeyword, constraints[0].Kind)
		assert.Equal(t, []string{"red"}, constraints[0].Terms)
		assert.False(t, constraints[0].Exclude)

		assert.Equal(t, []string{"cords"}, constraints[1].Terms)
		assert.True(t, constraints[1].Exclude)
	})

	t.Run("numeric and keyword constraints mix", func(t *testing.T) {
		t.Parallel()
		constraints, _ := harvest.ParseConstraints("wooden chairs under 950zł")
		require.Len(t, constraints, 2)
		assert.Equal(t, harvest.ConstraintNumeric, constraints[0].Kind)
		assert.Equal(t, harvest.FieldPrice, constraints[0].Field)
		assert.Equal(t, harvest.ConstraintKeyword, constraints[1].Kind)
		assert.Equal(t, []string{"wooden"}, constraints[1].Terms)
	})

	t.Run("bare number becomes a warning not a constraint", func(t *testing.T) {
		t.Parallel()
		constraints, warnings := harvest.ParseConstraints("show me 5 products")
		assert.Empty(t, constraints)
		require.Len(t, warnings, 1)
		assert.Equal(t, "5", warnings[0].Mention)
		assert.NotEmpty(t, warnings[0].Reason)
	})

	t.Run("quantity without a cue becomes a warning", func(t *testing.T) {
		t.Parallel()
		constraints, warnings := harvest.ParseConstraints("products weighing 100g")
		assert.Empty(t, constraints)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0].Mention, "100g")
	})

	t.Run("no cues yields no constraints", func(t *testing.T) {
		t.Parallel()
		constraints, warnings := harvest.ParseConstraints("Find all the products")
		assert.Empty(t, constraints)
		assert.Empty(t, warnings)
	})

	t.Run("empty instruction", func(t *testing.T) {
		t.Parallel()
		constraints, warnings := harvest.ParseConstraints("   ")
		assert.Nil(t, constraints)
		assert.Nil(t, warnings)
	})
}

func TestConstraintDescribe(t *testing.T) {
	t.Parallel()

	numeric := harvest.Constraint{
		Kind:  harvest.ConstraintNumeric,
		Field: harvest.FieldPrice,
		Cmp:   harvest.CmpLt,
		Value: 950,
		Unit:  "PLN",
	}
	assert.Equal(t, "price < 950PLN", numeric.Describe())

	keyword := harvest.Constraint{
		Kind:    harvest.ConstraintKeyword,
		Field:   "any",
		Terms:   []string{"cords"},
		Exclude: true,
	}
	assert.Equal(t, `exclude keyword any "cords"`, keyword.Describe())
}
