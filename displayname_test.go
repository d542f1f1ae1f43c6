// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lti

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/unicode/norm"
)

func TestCleanDisplayName(t *testing.T) {
	nfc, nfd := norm.NFC, norm.NFD

	Convey("Display names", t, func() {
		Convey("are kept as they are if already clean", func() {
			So(CleanDisplayName("Ada Lovelace", nil), ShouldEqual, "Ada Lovelace")
			So(CleanDisplayName("Ζωή Παπαδοπούλου", nil), ShouldEqual, "Ζωή Παπαδοπούλου")
			So(CleanDisplayName("山田 太郎", &nfc), ShouldEqual, "山田 太郎")
		})

		Convey("lose control characters and separators", func() {
			So(CleanDisplayName("Ada\x00 Love\u202elace\r\n", nil), ShouldEqual, "Ada Lovelace")
			So(CleanDisplayName("Ada\u2028Lovelace", nil), ShouldEqual, "Ada Lovelace")
			So(CleanDisplayName("Ada\u200bLovelace", nil), ShouldEqual, "AdaLovelace")
			So(CleanDisplayName("\x07\x1b[31m", nil), ShouldEqual, "[31m")
		})

		Convey("have their white space collapsed", func() {
			So(CleanDisplayName("  Ada \t\u00a0 Lovelace  ", nil), ShouldEqual, "Ada Lovelace")
			So(CleanDisplayName(" \t ", nil), ShouldEqual, "")
		})

		Convey("get normalized if a form is given", func() {
			decomposed := "Lo\u0308we" // o, combining diaeresis
			composed := "L\u00f6we"
			So(CleanDisplayName(decomposed, nil), ShouldEqual, decomposed)
			So(CleanDisplayName(decomposed, &nfc), ShouldEqual, composed)
			So(CleanDisplayName(composed, &nfd), ShouldEqual, decomposed)
		})
	})
}
