package tlsf

import "testing"

func TestMappingInsert(t *testing.T) {
	cases := []struct {
		size   uintptr
		fl, sl int
	}{
		{0, 0, 0},
		{8, 0, 1},
		{24, 0, 3},
		{32, 1, 0},
		{40, 1, 1},
		{63, 1, 3},
		{64, 2, 0},
		{128, 3, 0},
	}

	for _, c := range cases {
		fl, sl := mappingInsert(c.size)
		if fl != c.fl || sl != c.sl {
			t.Errorf("mappingInsert(%d) = (%d, %d), want (%d, %d)", c.size, fl, sl, c.fl, c.sl)
		}
	}
}

func TestMappingSearch(t *testing.T) {
	cases := []struct {
		size   uintptr
		fl, sl int
	}{
		{0, 0, 0},
		{20, 0, 2},
		// 33 is not itself a bucket-exact size at (fl=1,sl=0); any free
		// block inserted there could be as small as 32 bytes, which would
		// be too small for a 33-byte request. mappingSearch must round up
		// to the next bucket whose minimum size is >= 33.
		{33, 1, 1},
		{40, 1, 1},
	}

	for _, c := range cases {
		fl, sl := mappingSearch(c.size)
		if fl != c.fl || sl != c.sl {
			t.Errorf("mappingSearch(%d) = (%d, %d), want (%d, %d)", c.size, fl, sl, c.fl, c.sl)
		}
	}
}

// bucketMinSize computes the smallest block size that maps into bucket
// (fl, sl) under mappingInsert, i.e. the bucket's floor.
func bucketMinSize(fl, sl int) uintptr {
	if fl == 0 {
		return uintptr(sl) * (smallBlockSize / slIndexCount)
	}

	f := fl + flIndexShift - 1
	base := uintptr(1) << uint(f)
	step := base >> slIndexCountLog2
	return base + uintptr(sl)*step
}

// TestMappingSearchBucketIsSufficient checks the defining property of
// mappingSearch directly, rather than pinning exact indices: for a request
// as adjustRequestSize hands it over, the bucket it names must never have a
// floor below the request, since any block found there is assumed to
// satisfy the request as-is.
func TestMappingSearchBucketIsSufficient(t *testing.T) {
	for size := uintptr(1); size < 1<<20; size += 97 {
		req := adjustRequestSize(size, alignSize)
		fl, sl := mappingSearch(req)

		if floor := bucketMinSize(fl, sl); floor < req {
			t.Fatalf("mappingSearch(%d) -> (%d,%d) whose floor %d is below the request", req, fl, sl, floor)
		}
	}
}
