package locale_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/palpa-deposit/internal/locale"
)

var _ = Describe("Catalog", func() {
	var catalog *locale.Catalog

	BeforeEach(func() {
		var err error
		catalog, err = locale.NewCatalog()
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("EANTypeError",
		func(l locale.Locale, expected string) {
			Expect(catalog.EANTypeError(l)).To(Equal(expected))
		},
		Entry("FI", locale.FI, "EAN-koodin on oltava int"),
		Entry("SV", locale.SV, "EAN-koden måste vara en int"),
		Entry("EN", locale.EN, "The EAN code must be an int"),
	)

	DescribeTable("CheckingEANCode",
		func(l locale.Locale, expected string) {
			Expect(catalog.CheckingEANCode(l, uint64(7340131601954))).To(Equal(expected))
		},
		Entry("FI", locale.FI, "EAN-koodin tarkistus: 7340131601954"),
		Entry("SV", locale.SV, "Kontrollerar EAN-kod: 7340131601954"),
		Entry("EN", locale.EN, "Checking EAN code: 7340131601954"),
	)

	DescribeTable("SetLocaleCookies",
		func(l locale.Locale, expected string) {
			Expect(catalog.SetLocaleCookies(l)).To(Equal(expected))
		},
		Entry("FI has no message", locale.FI, ""),
		Entry("SV", locale.SV, "Ställa in lokala cookies"),
		Entry("EN", locale.EN, "Setting locale cookies"),
	)

	DescribeTable("FetchDepositInformation",
		func(l locale.Locale, expected string) {
			Expect(catalog.FetchDepositInformation(l)).To(Equal(expected))
		},
		Entry("FI", locale.FI, "Haetaan talletustietoja"),
		Entry("SV", locale.SV, "Hämtar insättningsinformation"),
		Entry("EN", locale.EN, "Fetching deposit information"),
	)

	DescribeTable("TotalValue",
		func(l locale.Locale, expected string) {
			Expect(catalog.TotalValue(l)).To(Equal(expected))
		},
		Entry("FI", locale.FI, "Yhteisarvo"),
		Entry("SV", locale.SV, "Totalt värde"),
		Entry("EN", locale.EN, "Total value"),
	)

	When("the locale is out of range", func() {
		It("should return empty messages", func() {
			Expect(catalog.EANTypeError(locale.Locale(5))).To(BeEmpty())
			Expect(catalog.FetchDepositInformation(locale.Locale(-1))).To(BeEmpty())
		})
	})

	It("should expose a ready package catalog", func() {
		Expect(locale.Messages.EANTypeError(locale.EN)).To(Equal("The EAN code must be an int"))
	})
})
