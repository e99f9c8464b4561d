package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossReferenceOrphans(t *testing.T) {
	js := `
		const el = document.getElementById('missing-id');
		document.querySelector('#present-id').focus();
		document.querySelector('.missing-class');
		el.classList.add('present-class');
		$('#jq-missing');
	`
	ids := map[string]bool{"present-id": true}
	classes := map[string]bool{"present-class": true}

	res := CrossReference(js, ids, classes)

	var idErrors, classWarnings []Issue
	for _, is := range res.Issues {
		switch is.Code {
		case CodeOrphanIDReference:
			idErrors = append(idErrors, is)
		case CodeOrphanClassReference:
			classWarnings = append(classWarnings, is)
		}
	}
	require.Len(t, idErrors, 2)
	assert.Equal(t, SeverityError, idErrors[0].Severity)
	require.Len(t, classWarnings, 1)
	assert.Equal(t, SeverityWarning, classWarnings[0].Severity)
}

func TestCrossReferenceDynamicSkipped(t *testing.T) {
	js := "document.getElementById(`section-${i}`); document.querySelector(sel);"
	res := CrossReference(js, nil, nil)

	found := 0
	for _, is := range res.Issues {
		if is.Code == CodeDynamicReferenceSkip {
			found++
		}
	}
	assert.GreaterOrEqual(t, found, 2)
	for _, is := range res.Issues {
		assert.NotEqual(t, CodeOrphanIDReference, is.Code)
	}
}

func TestResultSeverityGates(t *testing.T) {
	clean := Result{}
	assert.True(t, clean.IsValid())
	assert.True(t, clean.CanProceed())
	assert.Equal(t, "clean", clean.Summary())

	warned := Result{Issues: []Issue{Warning(CodeGhostVariantKey, "w")}}
	assert.True(t, warned.IsValid())
	assert.True(t, warned.CanProceed())

	errored := Result{Issues: []Issue{Error(CodeOrphanIDReference, "e")}}
	assert.False(t, errored.IsValid())
	assert.True(t, errored.CanProceed())

	fatal := Result{Issues: []Issue{Fatal(CodeDuplicateUUID, "f")}}
	assert.False(t, fatal.IsValid())
	assert.False(t, fatal.CanProceed())
}

func TestMergeConcatenates(t *testing.T) {
	a := Result{Issues: []Issue{Info("A", "a")}}
	b := Result{Issues: []Issue{Warning("B", "b")}}
	merged := Merge(a, b)
	require.Len(t, merged.Issues, 2)
	assert.Equal(t, "A", merged.Issues[0].Code)
	assert.Equal(t, "1 warning, 1 info", merged.Summary())
}
