package layout

import (
	"math"
	"reflect"
	"testing"

	"github.com/kozaktomas/photo-appendix/internal/config"
)

const eps = 0.01

func testConfig(imagesPerPage int) config.AppendixConfig {
	cfg := config.Load().Appendix
	cfg.ImagesPerPage = imagesPerPage
	return cfg
}

func TestPlanSlotArithmetic(t *testing.T) {
	for imagesPerPage := 1; imagesPerPage <= 4; imagesPerPage++ {
		for _, count := range []int{0, 1, 2, 3, 4, 5, 7, 10, 23} {
			slots := Plan(count, testConfig(imagesPerPage))

			if len(slots) != count {
				t.Fatalf("ipp=%d count=%d: got %d slots", imagesPerPage, count, len(slots))
			}
			prevPage := 0
			for i, s := range slots {
				if s.Page != i/imagesPerPage {
					t.Errorf("ipp=%d slot %d: page %d, want %d", imagesPerPage, i, s.Page, i/imagesPerPage)
				}
				if s.Index != i%imagesPerPage {
					t.Errorf("ipp=%d slot %d: index %d, want %d", imagesPerPage, i, s.Index, i%imagesPerPage)
				}
				if s.Page < prevPage {
					t.Errorf("ipp=%d slot %d: page decreased", imagesPerPage, i)
				}
				prevPage = s.Page
				if s.ImageWidthMM <= 0 || s.ImageMaxHeightMM <= 0 {
					t.Errorf("ipp=%d slot %d: non-positive image area %gx%g", imagesPerPage, i, s.ImageWidthMM, s.ImageMaxHeightMM)
				}
			}
		}
	}
}

func TestPlanGridGeometry(t *testing.T) {
	t.Run("one per page fills content area", func(t *testing.T) {
		cfg := testConfig(1)
		slots := Plan(1, cfg)
		s := slots[0]
		wantW := cfg.PageWidthMM - 2*cfg.MarginMM
		wantH := cfg.PageHeightMM - 2*cfg.MarginMM
		if math.Abs(s.ImageWidthMM-wantW) > eps {
			t.Errorf("width %g, want %g", s.ImageWidthMM, wantW)
		}
		if math.Abs(s.CellHeightMM-wantH) > eps {
			t.Errorf("cell height %g, want %g", s.CellHeightMM, wantH)
		}
		if math.Abs(s.X-cfg.MarginMM) > eps || math.Abs(s.Y-cfg.MarginMM) > eps {
			t.Errorf("origin (%g,%g), want margin corner", s.X, s.Y)
		}
	})

	t.Run("two per page stack vertically", func(t *testing.T) {
		cfg := testConfig(2)
		slots := Plan(2, cfg)
		if math.Abs(slots[0].X-slots[1].X) > eps {
			t.Error("vertically stacked slots must share X")
		}
		if slots[1].Y <= slots[0].Y {
			t.Error("second slot must sit below the first")
		}
		wantY := slots[0].Y + slots[0].CellHeightMM + GutterMM
		if math.Abs(slots[1].Y-wantY) > eps {
			t.Errorf("second slot Y %g, want %g", slots[1].Y, wantY)
		}
	})

	t.Run("four per page form a 2x2 grid", func(t *testing.T) {
		cfg := testConfig(4)
		slots := Plan(4, cfg)
		if math.Abs(slots[0].Y-slots[1].Y) > eps {
			t.Error("slots 0 and 1 must share the top row")
		}
		if math.Abs(slots[0].X-slots[2].X) > eps {
			t.Error("slots 0 and 2 must share the left column")
		}
		if slots[1].X <= slots[0].X {
			t.Error("slot 1 must sit right of slot 0")
		}
		if slots[2].Y <= slots[0].Y {
			t.Error("slot 2 must sit below slot 0")
		}
	})

	t.Run("three per page use the 2x2 grid", func(t *testing.T) {
		cfg := testConfig(3)
		slots := Plan(3, cfg)
		four := Plan(3, testConfig(4))
		for i := range slots {
			if math.Abs(slots[i].X-four[i].X) > eps || math.Abs(slots[i].Y-four[i].Y) > eps {
				t.Errorf("slot %d geometry differs between 3 and 4 per page", i)
			}
		}
		// Third photo starts the second row, page unchanged.
		if slots[2].Page != 0 {
			t.Errorf("slot 2 page %d, want 0", slots[2].Page)
		}
	})
}

func TestPlanDeterministic(t *testing.T) {
	cfg := testConfig(3)
	a := Plan(11, cfg)
	b := Plan(11, cfg)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce identical plans")
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct {
		count, ipp, want int
	}{
		{0, 2, 0},
		{1, 2, 1},
		{4, 2, 2},
		{5, 2, 3},
		{4, 4, 1},
		{5, 1, 5},
	}
	for _, tc := range cases {
		got := PageCount(Plan(tc.count, testConfig(tc.ipp)))
		if got != tc.want {
			t.Errorf("PageCount(%d photos, %d per page) = %d, want %d", tc.count, tc.ipp, got, tc.want)
		}
	}
}
