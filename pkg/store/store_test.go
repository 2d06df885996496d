package store_test

import (
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-taxform/pkg/rules"
	"github.com/goliatone/go-taxform/pkg/store"
	"github.com/goliatone/go-taxform/pkg/testsupport"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.New(
		store.MapTemplateSource{
			testsupport.VATFormID:       []byte(testsupport.VATTemplate),
			testsupport.CorporateFormID: []byte(testsupport.CorporateTemplate),
		},
		store.BytesRuleSource(testsupport.RuleTable),
	)
	require.NoError(t, err)
	return st
}

func TestSchemaIsParsedOnceAndCached(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	first, err := st.Schema(testsupport.VATFormID)
	require.NoError(t, err)
	second, err := st.Schema(testsupport.VATFormID)
	require.NoError(t, err)
	assert.Same(t, first, second, "second lookup must hit the cache")
}

func TestSchemaNotFound(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	_, err := st.Schema("99/NOPE")
	var notFound *store.SchemaNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "99/NOPE", notFound.FormID)
}

func TestRulesResolveAndCache(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	resolved, err := st.Rules(testsupport.VATFormID)
	require.NoError(t, err)
	assert.Len(t, resolved, 5)

	// forms absent from the table still resolve, to an empty set
	empty, err := st.Rules(testsupport.CorporateFormID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMissingRuleTableIsSentinelError(t *testing.T) {
	t.Parallel()

	st, err := store.New(
		store.MapTemplateSource{testsupport.VATFormID: []byte(testsupport.VATTemplate)},
		store.BytesRuleSource(nil),
	)
	require.NoError(t, err)

	_, err = st.Rules(testsupport.VATFormID)
	assert.ErrorIs(t, err, rules.ErrRuleTableNotFound)

	// same sentinel when no rule source is configured at all
	st, err = store.New(
		store.MapTemplateSource{testsupport.VATFormID: []byte(testsupport.VATTemplate)},
		nil,
	)
	require.NoError(t, err)
	_, err = st.Rules(testsupport.VATFormID)
	assert.ErrorIs(t, err, rules.ErrRuleTableNotFound)
}

func TestInvalidateDropsCachedEntries(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	first, err := st.Schema(testsupport.VATFormID)
	require.NoError(t, err)

	st.Invalidate(testsupport.VATFormID)

	second, err := st.Schema(testsupport.VATFormID)
	require.NoError(t, err)
	assert.NotSame(t, first, second, "invalidated entry must be re-parsed")
}

func TestConcurrentAccessIsSafe(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := st.Schema(testsupport.VATFormID); err != nil {
				errs <- err
			}
			if _, err := st.Rules(testsupport.VATFormID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent access: %v", err)
	}
}

func TestFSSource(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"01_GTGT.xml": {Data: []byte(testsupport.VATTemplate)},
		"MapMCT.xml":  {Data: []byte(testsupport.RuleTable)},
	}
	source := store.FSSource{FS: fsys}

	st, err := store.New(source, source)
	require.NoError(t, err)

	s, err := st.Schema(testsupport.VATFormID)
	require.NoError(t, err)
	assert.Equal(t, "2.5.1", s.Version)

	resolved, err := st.Rules(testsupport.VATFormID)
	require.NoError(t, err)
	assert.Len(t, resolved, 5)

	_, err = st.Schema("02/TNCN")
	var notFound *store.SchemaNotFoundError
	assert.True(t, errors.As(err, &notFound))
}
