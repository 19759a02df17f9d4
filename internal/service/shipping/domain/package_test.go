package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestZoneInclude(t *testing.T) {
	zone := &Zone{Members: []ZoneMember{
		{Kind: ZoneMemberCountry, Code: "CA"},
		{Kind: ZoneMemberState, Code: "NY", Country: "US"},
	}}

	assert.True(t, zone.Include(Address{Country: "ca", State: "ON"}))
	assert.True(t, zone.Include(Address{Country: "US", State: "NY"}))
	assert.False(t, zone.Include(Address{Country: "US", State: "CA"}))
	assert.False(t, zone.Include(Address{Country: "AU", State: "NY"}))

	var nilZone *Zone
	assert.False(t, nilZone.Include(us))
}

func TestNewPackageKeepsMethodsCoveringDestination(t *testing.T) {
	domestic := method(1, DisplayBoth, costing("1"))
	overseas := &ShippingMethod{ID: 2, Zones: []*Zone{{Members: []ZoneMember{{Kind: ZoneMemberCountry, Code: "DE"}}}}}

	pkg := NewPackage("p", "R1", "usd", us, nil, []*ShippingMethod{overseas, nil, domestic})
	assert.Equal(t, "USD", pkg.Currency)
	if assert.Len(t, pkg.ShippingMethods, 1) {
		assert.Same(t, domestic, pkg.ShippingMethods[0])
	}
}

func TestPackageTotals(t *testing.T) {
	pkg := packageOf(
		ContentItem{Quantity: 2, Price: d("3.10"), Weight: d("0.5")},
		ContentItem{Quantity: 1, Price: d("1.00"), Weight: d("2")},
	)
	assert.Equal(t, 3, pkg.Quantity())
	assert.Equal(t, "7.20", pkg.ItemTotal().StringFixed(2))
	assert.True(t, pkg.Weight().Equal(decimal.NewFromInt(3)))
}

func TestPackageValidate(t *testing.T) {
	assert.NoError(t, fulfilledPackage().Validate())

	noCurrency := fulfilledPackage()
	noCurrency.Currency = ""
	assert.ErrorIs(t, noCurrency.Validate(), ErrPackageInvalid)

	noCountry := fulfilledPackage()
	noCountry.Destination = Address{}
	assert.ErrorIs(t, noCountry.Validate(), ErrPackageInvalid)

	badQty := packageOf(ContentItem{Quantity: 0, Price: d("1")})
	assert.ErrorIs(t, badQty.Validate(), ErrPackageInvalid)
}

func TestDisplayOn(t *testing.T) {
	assert.True(t, DisplayOn("").FrontEnd())
	assert.True(t, DisplayBoth.BackEnd())
	assert.False(t, DisplayBackEnd.FrontEnd())
	assert.False(t, DisplayFrontEnd.BackEnd())
	assert.False(t, DisplayOn("nowhere").Valid())

	f, err := ParseDisplayFilter("")
	assert.NoError(t, err)
	assert.Equal(t, DisplayFrontEnd, f)
	f, err = ParseDisplayFilter("both")
	assert.NoError(t, err)
	assert.Equal(t, DisplayBoth, f)
	_, err = ParseDisplayFilter("back_end")
	assert.ErrorIs(t, err, ErrInvalidDisplay)
}
