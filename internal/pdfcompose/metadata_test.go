package pdfcompose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MeKo-Tech/derivans/internal/model"
)

func TestBuildXMPPacketIncludesKnownFields(t *testing.T) {
	d := model.NewDescriptiveData()
	d.Title = "Ode In Solemni Panegyri"
	d.Person = "Brühl"
	d.Keywords = "baroque, panegyric"
	d.License = model.NotAvailable

	packet := string(buildXMPPacket(d))

	assert.Contains(t, packet, "<?xpacket begin=")
	assert.Contains(t, packet, "Ode In Solemni Panegyri")
	assert.Contains(t, packet, "Brühl")
	assert.Contains(t, packet, "baroque, panegyric")
	assert.Contains(t, packet, "<pdf:Producer>derivans</pdf:Producer>")
	assert.NotContains(t, packet, "pdf:Rights")
	assert.True(t, strings.HasSuffix(packet, "<?xpacket end=\"w\"?>"))
}

func TestXMPValueEscapesAndSkipsSentinel(t *testing.T) {
	assert.Equal(t, "", xmpValue(model.NotAvailable))
	assert.Equal(t, "", xmpValue(""))
	assert.Equal(t, "A &amp; B", xmpValue("A & B"))
}
