package cucumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierTags(t *testing.T) {
	tags := []string{"@smoke", "@TR-C12", "@TR-Cx", "@TR-C7", "@SHOP-1"}
	assert.Equal(t, []string{"@TR-C12", "@TR-C7"}, IdentifierTags(tags))
	assert.Equal(t, "@TR-C482", IdentifierTag(482))

	id, err := CaseIDFromTag("@TR-C482")
	assert.NoError(t, err)
	assert.Equal(t, 482, id)

	_, err = CaseIDFromTag("@TR-C0")
	assert.Error(t, err)
	assert.True(t, HasTagContaining(tags, "smo"))
	assert.False(t, HasTagContaining(tags, "regression"))
}
