package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePageContext_Profile(t *testing.T) {
	pc, err := DecodePageContext(json.RawMessage(`{"page":"profile","pageName":"My profile","data":{"profile":{"rrspRoom":12000}}}`))
	require.NoError(t, err)
	require.NotNil(t, pc)

	assert.Equal(t, PageProfile, pc.Kind())
	assert.Equal(t, "My profile", pc.Name)

	page, ok := pc.Data.(ProfilePage)
	require.True(t, ok)
	require.NotNil(t, page.Profile)
	require.NotNil(t, page.Profile.RRSPRoom)
	assert.Equal(t, 12000.0, *page.Profile.RRSPRoom)
	assert.Nil(t, page.Profile.TFSARoom)
}

func TestDecodePageContext_Variants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want PageKind
	}{
		{"dashboard", `{"page":"dashboard","data":{"position":{"taxYear":2024,"balance":1200}}}`, PageDashboard},
		{"summary alias", `{"page":"summary","data":{}}`, PageDashboard},
		{"calculator", `{"page":"calculator","data":{"calculator":"RRSP","inputs":{"income":85000}}}`, PageCalculator},
		{"scanner", `{"page":"scanned-document","data":{"document":{"documentType":"T4"}}}`, PageScanner},
		{"no data", `{"page":"profile"}`, PageProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := DecodePageContext(json.RawMessage(tt.raw))
			require.NoError(t, err)
			require.NotNil(t, pc)
			assert.Equal(t, tt.want, pc.Kind())
		})
	}
}

func TestDecodePageContext_AbsentAndInvalid(t *testing.T) {
	pc, err := DecodePageContext(nil)
	assert.NoError(t, err)
	assert.Nil(t, pc)

	pc, err = DecodePageContext(json.RawMessage(`null`))
	assert.NoError(t, err)
	assert.Nil(t, pc)

	_, err = DecodePageContext(json.RawMessage(`{"page":"settings","data":{}}`))
	assert.True(t, errors.Is(err, ErrUnknownPage))

	_, err = DecodePageContext(json.RawMessage(`{"page":"dashboard","data":{"position":"oops"}}`))
	assert.Error(t, err)
}

func TestNilPageContextKind(t *testing.T) {
	var pc *PageContext
	assert.Equal(t, PageKind(""), pc.Kind())
}
