package conversation

import (
	"testing"

	"barberflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSlots() []models.Slot {
	return []models.Slot{
		{Start: "09:00", End: "09:30"},
		{Start: "09:30", End: "10:00"},
		{Start: "10:00", End: "10:30"},
		{Start: "10:30", End: "11:00"},
	}
}

func TestMenuShortListFitsOnOnePage(t *testing.T) {
	m := serviceMenu(engineCatalog()[:3], 0)

	visible, hasMore := m.page()
	assert.Len(t, visible, 3)
	assert.False(t, hasMore, "three options fit under the button cap without More")

	buttons := m.buttons()
	require.Len(t, buttons, 3)
	assert.Equal(t, "service_haircut", buttons[0].ID)
}

func TestMenuLongListPagesWithAbsoluteNumbering(t *testing.T) {
	m := serviceMenu(engineCatalog(), 1)

	body := m.body("Pick a service:")
	assert.Contains(t, body, "3. Cut + Beard")
	assert.Contains(t, body, "4. Coloring")
	assert.NotContains(t, body, "1. Haircut")
}

func TestMenuOverrunPageWrapsToStart(t *testing.T) {
	// A "more" tap past the last page must land the customer back on the
	// first page with matching numbering, not stranded numbers the
	// ordinal resolver would reject.
	m := serviceMenu(engineCatalog(), 7)

	assert.Equal(t, 0, m.clampedPage())

	body := m.body("Pick a service:")
	assert.Contains(t, body, "1. Haircut")
	assert.Contains(t, body, "2. Beard Trim")
	assert.NotContains(t, body, "15.")

	buttons := m.buttons()
	require.NotEmpty(t, buttons)
	assert.Equal(t, "service_haircut", buttons[0].ID)
	assert.Equal(t, "service_more", buttons[len(buttons)-1].ID)
}

func TestMenuOptionKeysCoverEveryPage(t *testing.T) {
	m := slotMenu(testSlots(), 0)
	assert.Equal(t, "09:00,09:30,10:00,10:30", m.optionKeys())
}
