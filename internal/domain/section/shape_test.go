package section

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNormalize_EditorShape(t *testing.T) {
	data := []byte(`{"items": [{"title": "Project A"}, {"title": "Project B"}]}`)

	content := Normalize(TypeCaseStudies, data)

	require.Len(t, content.Items, 2)
	assert.Equal(t, "Project A", gjson.GetBytes(content.Items[0], "title").String())
	assert.Equal(t, "Project B", gjson.GetBytes(content.Items[1], "title").String())
}

func TestNormalize_LegacyShape(t *testing.T) {
	cases := []struct {
		sectionType string
		data        string
		wantField   string
		wantValue   string
	}{
		{TypeCaseStudies, `{"case_studies": [{"title": "Migration"}]}`, "title", "Migration"},
		{TypeSkillsMatrix, `{"skills_with_proof": [{"skill": "Go"}]}`, "skill", "Go"},
		{TypeTimeline, `{"timeline": [{"role": "Engineer"}]}`, "role", "Engineer"},
		{TypeImpactCharts, `{"metrics": [{"label": "Revenue"}]}`, "label", "Revenue"},
		{TypeLanguages, `{"languages": [{"language": "German"}]}`, "language", "German"},
		{TypeTestimonials, `{"testimonials": [{"author": "A client"}]}`, "author", "A client"},
	}

	for _, tc := range cases {
		t.Run(tc.sectionType, func(t *testing.T) {
			content := Normalize(tc.sectionType, []byte(tc.data))

			require.Len(t, content.Items, 1)
			assert.Equal(t, tc.wantValue, gjson.GetBytes(content.Items[0], tc.wantField).String())
		})
	}
}

func TestNormalize_ItemsTakesPrecedenceOverLegacyKey(t *testing.T) {
	data := []byte(`{
		"items": [{"title": "Edited"}],
		"case_studies": [{"title": "Stale"}, {"title": "Also stale"}]
	}`)

	content := Normalize(TypeCaseStudies, data)

	require.Len(t, content.Items, 1)
	assert.Equal(t, "Edited", gjson.GetBytes(content.Items[0], "title").String())
}

func TestNormalize_EmptyItemsFallsBackToLegacyKey(t *testing.T) {
	data := []byte(`{"items": [], "timeline": [{"role": "PM"}]}`)

	content := Normalize(TypeTimeline, data)

	require.Len(t, content.Items, 1)
	assert.Equal(t, "PM", gjson.GetBytes(content.Items[0], "role").String())
}

func TestNormalize_LegacyKeyPriorityOrder(t *testing.T) {
	// impact_charts has two legacy keys; "metrics" wins over "visualizations"
	data := []byte(`{
		"metrics": [{"label": "Churn"}],
		"visualizations": [{"label": "Chart"}]
	}`)

	content := Normalize(TypeImpactCharts, data)

	require.Len(t, content.Items, 1)
	assert.Equal(t, "Churn", gjson.GetBytes(content.Items[0], "label").String())
}

func TestNormalize_ScalarsSurviveAlongsideItems(t *testing.T) {
	data := []byte(`{"name": "Ada", "title": "Engineer", "items": []}`)

	content := Normalize(TypeHero, data)

	assert.Empty(t, content.Items)
	assert.Equal(t, `"Ada"`, string(content.Scalars["name"]))
	assert.Equal(t, `"Engineer"`, string(content.Scalars["title"]))
}

func TestNormalize_MalformedData(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte(``),
		[]byte(`not json`),
		[]byte(`[1, 2, 3]`),
		[]byte(`"a string"`),
		[]byte(`{"items": "not an array"}`),
	} {
		content := Normalize(TypeCaseStudies, data)

		assert.Empty(t, content.Items)
		assert.NotNil(t, content.Items)
		assert.NotNil(t, content.Scalars)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	data := []byte(`{"case_studies": [{"title": "A"}], "intro": "hello"}`)

	once := Normalize(TypeCaseStudies, data).Document()
	twice := Normalize(TypeCaseStudies, once).Document()

	assert.JSONEq(t, string(once), string(twice))
}

func TestCanonicalizeForSave_MigratesLegacyShape(t *testing.T) {
	// a generated section edited for the first time: the legacy key is
	// consumed and the document leaves in editor shape for good
	data := []byte(`{"case_studies": [{"title": "A"}], "intro": "hello"}`)

	out, err := CanonicalizeForSave(TypeCaseStudies, data)
	require.NoError(t, err)

	doc := gjson.ParseBytes(out)
	assert.False(t, doc.Get("case_studies").Exists())
	require.True(t, doc.Get("items").IsArray())
	assert.Equal(t, "A", doc.Get("items.0.title").String())
	assert.Equal(t, "hello", doc.Get("intro").String())
}

func TestCanonicalizeForSave_EditorShapeUnchanged(t *testing.T) {
	data := []byte(`{"items": [{"title": "A"}, {"title": "B"}]}`)

	out, err := CanonicalizeForSave(TypeCaseStudies, data)
	require.NoError(t, err)

	assert.JSONEq(t, string(data), string(out))
}

func TestCanonicalizeForSave_ItemsWinOverLegacyKey(t *testing.T) {
	data := []byte(`{
		"items": [{"title": "A"}, {"title": "B"}],
		"case_studies": [{"title": "Stale"}]
	}`)

	out, err := CanonicalizeForSave(TypeCaseStudies, data)
	require.NoError(t, err)

	doc := gjson.ParseBytes(out)
	assert.False(t, doc.Get("case_studies").Exists())
	assert.Len(t, doc.Get("items").Array(), 2)
	assert.Equal(t, "A", doc.Get("items.0.title").String())
}

func TestCanonicalizeForSave_NoItemsAnywhere(t *testing.T) {
	out, err := CanonicalizeForSave(TypeHero, []byte(`{"name": "Ada"}`))
	require.NoError(t, err)

	doc := gjson.ParseBytes(out)
	assert.Equal(t, "Ada", doc.Get("name").String())
	require.True(t, doc.Get("items").IsArray())
	assert.Empty(t, doc.Get("items").Array())
}

func TestCanonicalizeForSave_MalformedBecomesEmptyDocument(t *testing.T) {
	for _, data := range [][]byte{nil, []byte(`not json`), []byte(`[]`)} {
		out, err := CanonicalizeForSave(TypeCaseStudies, data)

		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(out))
	}
}

func TestItemField_TimelineFallbacks(t *testing.T) {
	legacy := json.RawMessage(`{"role": "Engineer", "start_year": "2019", "end_year": "2022"}`)
	canonical := json.RawMessage(`{"role": "Engineer", "start_date": "2019-03", "start_year": "2019"}`)

	assert.Equal(t, "2019", ItemField(TypeTimeline, legacy, "start_date").String())
	assert.Equal(t, "2022", ItemField(TypeTimeline, legacy, "end_date").String())
	// canonical spelling wins when both are present
	assert.Equal(t, "2019-03", ItemField(TypeTimeline, canonical, "start_date").String())
	assert.False(t, ItemField(TypeTimeline, legacy, "company").Exists())
}

func TestDocument_RebuildsCanonicalShape(t *testing.T) {
	content := Normalize(TypeCaseStudies, []byte(`{"case_studies": [{"title": "A"}], "intro": "hi"}`))

	doc := gjson.ParseBytes(content.Document())

	assert.Equal(t, "A", doc.Get("items.0.title").String())
	assert.Equal(t, "hi", doc.Get("intro").String())
	assert.False(t, doc.Get("case_studies").Exists())
}
