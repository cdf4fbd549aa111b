package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bundleItem(name string, price string) Item {
	return Item{SubjectID: name, SubjectName: name, IsBundle: true, Price: d(price)}
}

func TestComputeQuote_SingleItemNoOffer(t *testing.T) {
	q := ComputeQuote([]Item{{SubjectName: "Mathematics", Price: d("150.00")}}, nil)

	assert.True(t, q.Subtotal.Equal(d("150.00")), "subtotal %s", q.Subtotal)
	assert.True(t, q.Discount.IsZero(), "discount %s", q.Discount)
	assert.True(t, q.Total.Equal(d("150.00")), "total %s", q.Total)
	assert.Empty(t, q.Package)
}

func TestComputeQuote_MandatoryFivePackage(t *testing.T) {
	items := []Item{
		bundleItem("Mathematics", "300"),
		bundleItem("English", "300"),
		bundleItem("Kiswahili", "300"),
		bundleItem("Science", "300"),
		bundleItem("Social Studies", "300"),
	}

	q := ComputeQuote(items, nil)

	assert.True(t, q.Subtotal.Equal(d("1500")), "subtotal %s", q.Subtotal)
	assert.True(t, q.Discount.Equal(d("300")), "discount %s", q.Discount)
	assert.True(t, q.Total.Equal(d("1200")), "total %s", q.Total)
	assert.Equal(t, "Mandatory 5 Package", q.Package)
}

func TestComputeQuote_PackageNeedsAllBundles(t *testing.T) {
	items := []Item{
		bundleItem("Mathematics", "300"),
		bundleItem("English", "300"),
		bundleItem("Kiswahili", "300"),
		bundleItem("Science", "300"),
		{SubjectName: "Social Studies", IsBundle: false, Price: d("300")},
	}

	q := ComputeQuote(items, nil)

	assert.Empty(t, q.Package)
	assert.True(t, q.Total.Equal(d("1500")), "total %s", q.Total)
}

func TestComputeQuote_FlatOffer(t *testing.T) {
	items := []Item{{SubjectName: "Mathematics", Price: d("150.00")}}
	q := ComputeQuote(items, &Offer{Code: "LAUNCH50", Amount: d("50")})

	assert.True(t, q.Discount.Equal(d("50")), "discount %s", q.Discount)
	assert.True(t, q.Total.Equal(d("100.00")), "total %s", q.Total)
}

func TestComputeQuote_PercentOffer(t *testing.T) {
	items := []Item{{SubjectName: "Mathematics", Price: d("150.00")}}
	q := ComputeQuote(items, &Offer{Code: "WELCOME10", Percent: d("10")})

	assert.True(t, q.Discount.Equal(d("15.00")), "discount %s", q.Discount)
	assert.True(t, q.Total.Equal(d("135.00")), "total %s", q.Total)
}

func TestComputeQuote_OfferStacksOnPackagePrice(t *testing.T) {
	items := []Item{
		bundleItem("Mathematics", "300"),
		bundleItem("English", "300"),
		bundleItem("Kiswahili", "300"),
		bundleItem("Science", "300"),
		bundleItem("Social Studies", "300"),
	}

	// 10% applies to the package price, not the summed subtotal.
	q := ComputeQuote(items, &Offer{Code: "WELCOME10", Percent: d("10")})

	assert.True(t, q.Discount.Equal(d("420.00")), "discount %s", q.Discount)
	assert.True(t, q.Total.Equal(d("1080.00")), "total %s", q.Total)
}

func TestComputeQuote_DiscountClampedAtZero(t *testing.T) {
	items := []Item{{SubjectName: "Mathematics", Price: d("150.00")}}
	q := ComputeQuote(items, &Offer{Code: "HUGE", Amount: d("500")})

	assert.True(t, q.Discount.Equal(d("150.00")), "discount %s", q.Discount)
	assert.True(t, q.Total.IsZero(), "total %s", q.Total)
	assert.False(t, q.Total.IsNegative())
}

func TestMinorUnits(t *testing.T) {
	minor, err := MinorUnits(d("150.00"), "usd")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), minor)

	minor, err = MinorUnits(d("500"), "jpy")
	require.NoError(t, err)
	assert.Equal(t, int64(500), minor)

	_, err = MinorUnits(d("10.005"), "usd")
	assert.Error(t, err)

	_, err = MinorUnits(d("10.5"), "jpy")
	assert.Error(t, err)
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, FromMinorUnits(15000, "usd").Equal(d("150.00")))
	assert.True(t, FromMinorUnits(500, "JPY").Equal(d("500")))
}

func TestAllocateTotal_EvenSplit(t *testing.T) {
	items := []Item{
		bundleItem("Mathematics", "300"),
		bundleItem("English", "300"),
		bundleItem("Kiswahili", "300"),
		bundleItem("Science", "300"),
		bundleItem("Social Studies", "300"),
	}

	amounts, err := AllocateTotal(items, d("1200"), "usd")
	require.NoError(t, err)
	require.Len(t, amounts, 5)
	for _, a := range amounts {
		assert.Equal(t, int64(24000), a)
	}
}

func TestAllocateTotal_RemainderCentsSumToTotal(t *testing.T) {
	items := []Item{
		{SubjectName: "Mathematics", Price: d("100")},
		{SubjectName: "English", Price: d("50")},
	}

	amounts, err := AllocateTotal(items, d("100"), "usd")
	require.NoError(t, err)

	var sum int64
	for _, a := range amounts {
		sum += a
	}
	assert.Equal(t, int64(10000), sum)
	assert.Equal(t, int64(6667), amounts[0])
	assert.Equal(t, int64(3333), amounts[1])
}

func TestAllocateTotal_NoDiscountKeepsSnapshotPrices(t *testing.T) {
	items := []Item{
		{SubjectName: "Mathematics", Price: d("150.00")},
		{SubjectName: "English", Price: d("120.50")},
	}

	amounts, err := AllocateTotal(items, d("270.50"), "usd")
	require.NoError(t, err)
	assert.Equal(t, []int64{15000, 12050}, amounts)
}
