package resume

import (
	"encoding/json"
	"errors"
	"testing"
)

func normalize(t *testing.T, key, raw string) map[string]any {
	t.Helper()
	out, err := NormalizeItemData(key, json.RawMessage(raw))
	if err != nil {
		t.Fatalf("NormalizeItemData(%s): %v", key, err)
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return decoded
}

func TestNormalizeBasics(t *testing.T) {
	got := normalize(t, SectionBasics, `{
		"fullName": "  Jane Doe ",
		"headline": "Engineer",
		"contact": {"email": "Jane@Example.com", "phone": " +1 555 0100 "},
		"location": {"city": "Berlin", "country": "Germany"},
		"links": [
			{"label": "GitHub", "url": "github.com/jane"},
			{"label": "github", "url": "GITHUB.com/jane"},
			{"label": "Blog", "url": "https://https://blog.example.com"}
		]
	}`)

	if got["fullName"] != "Jane Doe" {
		t.Errorf("fullName = %v", got["fullName"])
	}

	contact := got["contact"].(map[string]any)
	if contact["email"] != "jane@example.com" {
		t.Errorf("email = %v", contact["email"])
	}
	// No explicit website: the first link fills in.
	if contact["website"] != "https://github.com/jane" {
		t.Errorf("website = %v", contact["website"])
	}

	location := got["location"].(map[string]any)
	if location["label"] != "Berlin, Germany" {
		t.Errorf("location label = %v", location["label"])
	}

	links := got["links"].([]any)
	if len(links) != 2 {
		t.Fatalf("expected duplicate link dropped, got %d links", len(links))
	}
	second := links[1].(map[string]any)
	if second["url"] != "https://blog.example.com/" {
		t.Errorf("second link url = %v", second["url"])
	}
}

func TestNormalizeBasicsRequiresFullName(t *testing.T) {
	_, err := NormalizeItemData(SectionBasics, json.RawMessage(`{"headline": "x"}`))
	if err == nil {
		t.Fatal("expected error")
	}
	var validation *ValidationError
	if !errors.As(err, &validation) || validation.Field != "fullName" {
		t.Errorf("expected fullName validation error, got %v", err)
	}
}

func TestNormalizeExperienceDates(t *testing.T) {
	// Nested start/end shape decodes the same as the flat one.
	got := normalize(t, SectionExperience, `{
		"role": "Engineer",
		"company": "Acme",
		"start": {"year": 2019, "month": 3},
		"end": {"year": 2021},
		"bullets": "shipped the thing\nkept it running",
		"tags": "Go, SQL"
	}`)

	if got["startYear"] != float64(2019) || got["startMonth"] != float64(3) {
		t.Errorf("start = %v/%v", got["startYear"], got["startMonth"])
	}
	if got["endYear"] != float64(2021) {
		t.Errorf("endYear = %v", got["endYear"])
	}
	bullets := got["bullets"].([]any)
	if len(bullets) != 2 || bullets[0] != "shipped the thing" {
		t.Errorf("bullets = %v", bullets)
	}
	tags := got["tags"].([]any)
	if len(tags) != 2 || tags[1] != "SQL" {
		t.Errorf("tags = %v", tags)
	}

	if _, err := NormalizeItemData(SectionExperience, json.RawMessage(`{"role": "x", "startYear": 2021, "endYear": 2019}`)); err == nil {
		t.Error("expected error for end before start")
	}
}

func TestNormalizeExperienceOmittedLists(t *testing.T) {
	// Absent bullets and tags come back as empty lists, never JSON null.
	got := normalize(t, SectionExperience, `{"role": "Engineer"}`)
	if list, ok := got["bullets"].([]any); !ok || len(list) != 0 {
		t.Errorf("bullets = %v, want []", got["bullets"])
	}
	if list, ok := got["tags"].([]any); !ok || len(list) != 0 {
		t.Errorf("tags = %v, want []", got["tags"])
	}
}

func TestNormalizeEducationRejectsPresent(t *testing.T) {
	_, err := NormalizeItemData(SectionEducation, json.RawMessage(`{"degree": "BSc", "startYear": 2018, "present": true}`))
	if err == nil {
		t.Error("expected error: education has no ongoing notion")
	}
}

func TestNormalizeSingletons(t *testing.T) {
	got := normalize(t, SectionSummary, `{"text": "  A short summary.  "}`)
	if got["text"] != "A short summary." {
		t.Errorf("summary text = %v", got["text"])
	}

	got = normalize(t, SectionDeclaration, `{"text": "I confirm the above.", "place": "Berlin", "name": "Jane"}`)
	if got["place"] != "Berlin" {
		t.Errorf("place = %v", got["place"])
	}

	if _, err := NormalizeItemData(SectionSummary, json.RawMessage(`{}`)); err == nil {
		t.Error("expected error for empty summary")
	}
}

func TestNormalizeSkillAndLanguage(t *testing.T) {
	got := normalize(t, SectionSkills, `{"name": "Go", "level": "advanced", "keywords": ["concurrency", "testing"]}`)
	if got["name"] != "Go" || got["level"] != "advanced" {
		t.Errorf("skill = %v", got)
	}

	// The level alias maps onto proficiency.
	got = normalize(t, SectionLanguages, `{"name": "German", "level": "B2"}`)
	if got["proficiency"] != "B2" {
		t.Errorf("proficiency = %v", got["proficiency"])
	}
}

func TestNormalizeItemDataRejectsNonObject(t *testing.T) {
	if _, err := NormalizeItemData(SectionSkills, json.RawMessage(`[1,2]`)); err == nil {
		t.Error("expected error for non-object payload")
	}
}
