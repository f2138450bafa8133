package stub

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLifecycle(t *testing.T, responses ...Response) *Lifecycle {
	t.Helper()
	lc, err := NewLifecycle("", "", Pattern{Methods: []string{"GET"}, URL: NewValue("/a")}, responses)
	require.NoError(t, err)
	return lc
}

func TestValue_Matches(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		input string
		want  bool
	}{
		{"literal equal", "/resource/1", "/resource/1", true},
		{"literal differs", "/resource/1", "/resource/2", false},
		{"regex full match", `/resource/\d+`, "/resource/42", true},
		{"regex partial is not enough", `/resource/\d+`, "/api/resource/42", false},
		{"regex trailing garbage", `/resource/\d+`, "/resource/42/x", false},
		{"invalid regex is literal", "/a[b", "/a[b", true},
		{"invalid regex no match", "/a[b", "/ab", false},
		{"question mark as regex", "/items?", "/items", true},
		{"question mark literal", "/items?", "/items?", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewValue(tt.raw).Matches(tt.input))
		})
	}
}

func TestNewLifecycle_Validation(t *testing.T) {
	ok := []Response{{Status: "200"}}

	_, err := NewLifecycle("", "", Pattern{URL: NewValue("/a")}, ok)
	assert.ErrorIs(t, err, ErrMissingMethod)

	_, err = NewLifecycle("", "", Pattern{Methods: []string{"GET"}}, ok)
	assert.ErrorIs(t, err, ErrMissingURL)

	_, err = NewLifecycle("", "", Pattern{Methods: []string{"GET"}, URL: NewValue("/a")}, nil)
	assert.ErrorIs(t, err, ErrNoResponses)

	_, err = NewLifecycle("", "", Pattern{Methods: []string{"GET"}, URL: NewValue("/a")},
		[]Response{{Body: []byte("x"), File: "/tmp/x"}})
	assert.ErrorIs(t, err, ErrBodyAndFile)

	_, err = NewLifecycle("", "", Pattern{Methods: []string{"GET"}, URL: NewValue("/a"), JSONPath: map[string]any{"$[": 1}}, ok)
	assert.ErrorIs(t, err, ErrInvalidJSONPath)

	lc, err := NewLifecycle("", "", Pattern{Methods: []string{"GET"}, URL: NewValue("/a")}, ok)
	require.NoError(t, err)
	assert.NotEmpty(t, lc.ID)
	assert.True(t, lc.GeneratedID())

	lc, err = NewLifecycle("fixed", "", Pattern{Methods: []string{"GET"}, URL: NewValue("/a")}, ok)
	require.NoError(t, err)
	assert.Equal(t, "fixed", lc.ID)
	assert.False(t, lc.GeneratedID())
}

func TestLifecycle_AdvanceCycles(t *testing.T) {
	lc := newTestLifecycle(t, Response{Status: "200"}, Response{Status: "201"}, Response{Status: "202"})

	var got []string
	for range 4 {
		got = append(got, lc.Advance().Status)
	}
	assert.Equal(t, []string{"200", "201", "202", "200"}, got)
	assert.Equal(t, int64(4), lc.Hits())
	assert.Equal(t, "201", lc.Next().Status)
}

func TestLifecycle_AdvanceConcurrent(t *testing.T) {
	lc := newTestLifecycle(t, Response{Status: "200"}, Response{Status: "201"})

	const workers, perWorker = 16, 250
	var wg sync.WaitGroup
	counts := make([]map[string]int, workers)
	for w := range workers {
		counts[w] = map[string]int{}
		wg.Add(1)
		go func(m map[string]int) {
			defer wg.Done()
			for range perWorker {
				m[lc.Advance().Status]++
			}
		}(counts[w])
	}
	wg.Wait()

	total := map[string]int{}
	for _, m := range counts {
		for k, v := range m {
			total[k] += v
		}
	}
	assert.Equal(t, int64(workers*perWorker), lc.Hits())
	assert.Equal(t, workers*perWorker/2, total["200"])
	assert.Equal(t, workers*perWorker/2, total["201"])
}

func TestResponse_StatusAndCategory(t *testing.T) {
	code, err := Response{}.StatusCode()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	_, err = Response{Status: "abc"}.StatusCode()
	assert.ErrorIs(t, err, ErrNonNumericStatus)

	assert.Equal(t, CategoryRedirect, Response{Status: "301"}.Category())
	assert.Equal(t, CategoryOK, Response{Status: "404"}.Category())
	assert.Equal(t, CategoryOK, Response{Status: "oops"}.Category())
}

func TestResponse_Delay(t *testing.T) {
	d, err := Response{Latency: "50"}.Delay()
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, d)

	d, err = Response{}.Delay()
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = Response{Latency: "43rl4knt3l"}.Delay()
	assert.ErrorIs(t, err, ErrNonNumericDelay)
}

func TestPattern_Methods(t *testing.T) {
	p := Pattern{Methods: []string{"GET", "HEAD"}}
	assert.True(t, p.AcceptsMethod("GET"))
	assert.False(t, p.AcceptsMethod("get"))
	assert.False(t, p.AcceptsMethod("POST"))

	anyMethod := Pattern{Methods: []string{MethodAny}}
	assert.True(t, anyMethod.AcceptsMethod("DELETE"))
}

func TestPattern_NeedsAuthorization(t *testing.T) {
	assert.False(t, (&Pattern{}).NeedsAuthorization())
	assert.True(t, (&Pattern{RequireAuthorization: true}).NeedsAuthorization())
	assert.True(t, (&Pattern{Headers: map[string]Value{"Authorization": NewValue("Basic x")}}).NeedsAuthorization())
}

func TestResponse_HeaderLookup(t *testing.T) {
	r := Response{Headers: map[string]string{"location": "/next"}}
	v, ok := r.Header("Location")
	assert.True(t, ok)
	assert.Equal(t, "/next", v)
}
