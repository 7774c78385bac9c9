package gormsize

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"katydid-common-excel/pkg/fieldlen"
)

type userModel struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"size:8"`
	Email    string `gorm:"column:mail;size:32"`
	Remark   string
	Age      int `gorm:"size:3"`
}

type importRow struct {
	Username string `label:"用户名"`
	Email    string `excel:"邮箱"`
	Remark   string
}

func TestLimits(t *testing.T) {
	limits, err := Limits(&userModel{})
	require.NoError(t, err)

	assert.Equal(t, fieldlen.Limits{
		"Username": 8,
		"username": 8,
		"Email":    32,
		"mail":     32,
	}, limits)
}

func TestLimitsWith(t *testing.T) {
	limits, err := LimitsWith(&userModel{}, Options{
		Namer: schema.NamingStrategy{TablePrefix: "t_"},
	})
	require.NoError(t, err)
	assert.Equal(t, fieldlen.Limits{"Username": 8, "Email": 32}, limits)
}

func TestLimitsWith_NamerNotCached(t *testing.T) {
	_, err := Limits(&userModel{})
	require.NoError(t, err)

	limits, err := LimitsWith(&userModel{}, Options{
		Namer:          schema.NamingStrategy{NameReplacer: strings.NewReplacer("Username", "Login")},
		IncludeColumns: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, limits["login"])
	assert.NotContains(t, limits, "username")

	limits, err = Limits(&userModel{})
	require.NoError(t, err)
	assert.Equal(t, 8, limits["username"])
}

func TestLimits_Unsupported(t *testing.T) {
	_, err := Limits(nil)
	assert.True(t, errors.Is(err, ErrUnsupportedModel))

	_, err = Limits("not a model")
	assert.True(t, errors.Is(err, ErrUnsupportedModel))
}

func TestLimits_WithValidator(t *testing.T) {
	limits, err := Limits(&userModel{})
	require.NoError(t, err)

	rows := []importRow{
		{Username: "short", Email: "a@b.c"},
		{Username: "much-too-long", Email: "a@b.c", Remark: "no column size"},
	}
	violations, err := fieldlen.New().ValidateBatch(rows, limits)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].Row)
	assert.Equal(t, "用户名", violations[0].Label)
	assert.Equal(t, 8, violations[0].Limit)
}
