package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/insight/pkg/errors"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := open(Config{Driver: "oracle"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidParam.Code))
}

func TestPingWrapsDatabaseErrors(t *testing.T) {
	p := NewProber()
	err := p.Ping(context.Background(), Config{Driver: "sqlserver"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDatabase.Code))
}
