package rental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewAvailability(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		minAvail    int
		maxPer      int
		buffer      int
		expectedErr error
	}{
		{name: "有効な台数設定", total: 4, minAvail: 0, maxPer: 2, buffer: 1},
		{name: "総台数が0はエラー", total: 0, minAvail: 0, maxPer: 1, buffer: 0, expectedErr: ErrInvalidTotalUnits},
		{name: "最低空き台数が負はエラー", total: 4, minAvail: -1, maxPer: 2, buffer: 0, expectedErr: ErrInvalidMinUnits},
		{name: "最低空き台数が総台数超はエラー", total: 4, minAvail: 5, maxPer: 2, buffer: 0, expectedErr: ErrInvalidMinUnits},
		{name: "最大台数が0はエラー", total: 4, minAvail: 0, maxPer: 0, buffer: 0, expectedErr: ErrInvalidMaxPerReservation},
		{name: "最大台数が総台数超はエラー", total: 2, minAvail: 0, maxPer: 5, buffer: 0, expectedErr: ErrInvalidMaxPerReservation},
		{name: "バッファが負はエラー", total: 4, minAvail: 0, maxPer: 2, buffer: -1, expectedErr: ErrInvalidBufferUnits},
		{name: "バッファが総台数以上はエラー", total: 4, minAvail: 0, maxPer: 2, buffer: 4, expectedErr: ErrInvalidBufferUnits},
		{name: "バッファは総台数未満まで", total: 4, minAvail: 0, maxPer: 2, buffer: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAvailability(tt.total, tt.minAvail, tt.maxPer, tt.buffer)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.total, a.TotalUnits)
		})
	}
}

func TestAvailability_CanRent(t *testing.T) {
	// 総4台・バッファ1台・1予約最大2台
	a, err := NewAvailability(4, 0, 2, 1)
	require.NoError(t, err)

	t.Run("貸出中1台なら2台借りられる", func(t *testing.T) {
		assert.True(t, a.CanRent(2, 1))
	})

	t.Run("貸出中2台では2台は借りられない", func(t *testing.T) {
		// 残り2台だがバッファ1台を確保するため
		assert.False(t, a.CanRent(2, 2))
		assert.True(t, a.CanRent(1, 2))
	})

	t.Run("1予約最大台数を超える要求は拒否", func(t *testing.T) {
		assert.False(t, a.CanRent(3, 0))
	})

	t.Run("0台以下の要求は拒否", func(t *testing.T) {
		assert.False(t, a.CanRent(0, 0))
		assert.False(t, a.CanRent(-1, 0))
	})

	t.Run("最低空き台数が確保できない要求は拒否", func(t *testing.T) {
		b, err := NewAvailability(4, 2, 2, 0)
		require.NoError(t, err)

		assert.True(t, b.CanRent(2, 0))
		assert.False(t, b.CanRent(2, 1), "貸出後の空きが最低空き台数を下回る")
	})
}

func TestAvailability_MaxRentableUnits(t *testing.T) {
	t.Run("1予約最大台数で頭打ちになる", func(t *testing.T) {
		a, err := NewAvailability(6, 0, 2, 0)
		require.NoError(t, err)

		assert.Equal(t, 2, a.MaxRentableUnits(0))
	})

	t.Run("バッファ分は貸し出せない", func(t *testing.T) {
		a, err := NewAvailability(4, 0, 4, 1)
		require.NoError(t, err)

		assert.Equal(t, 3, a.MaxRentableUnits(0))
		assert.Equal(t, 1, a.MaxRentableUnits(2))
	})

	t.Run("余力がなければ0", func(t *testing.T) {
		a, err := NewAvailability(2, 0, 2, 1)
		require.NoError(t, err)

		assert.Equal(t, 0, a.MaxRentableUnits(1))
		assert.Equal(t, 0, a.MaxRentableUnits(2))
	})

	t.Run("最低空き台数の分も差し引かれる", func(t *testing.T) {
		a, err := NewAvailability(5, 2, 5, 0)
		require.NoError(t, err)

		assert.Equal(t, 3, a.MaxRentableUnits(0))
		assert.Equal(t, 1, a.MaxRentableUnits(2))
	})
}

// drawAvailability は有効な台数設定をランダムに生成する
func drawAvailability(t *rapid.T) Availability {
	total := rapid.IntRange(1, 20).Draw(t, "total")
	a, err := NewAvailability(
		total,
		rapid.IntRange(0, total).Draw(t, "minAvail"),
		rapid.IntRange(1, total).Draw(t, "maxPer"),
		rapid.IntRange(0, total-1).Draw(t, "buffer"),
	)
	if err != nil {
		t.Fatalf("台数設定の生成に失敗: %v", err)
	}
	return a
}

func TestAvailability_Properties(t *testing.T) {
	t.Run("MaxRentableUnits以下の台数は必ず貸し出せる", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			a := drawAvailability(rt)
			rented := rapid.IntRange(0, a.TotalUnits).Draw(rt, "rented")

			max := a.MaxRentableUnits(rented)
			if max < 0 {
				rt.Fatalf("最大貸出台数が負: %d", max)
			}
			for r := 1; r <= max; r++ {
				if !a.CanRent(r, rented) {
					rt.Fatalf("%d台は最大値 %d 以下なのに貸し出せない (設定=%+v, 貸出中=%d)",
						r, max, a, rented)
				}
			}
		})
	})

	t.Run("貸し出せる台数はMaxRentableUnitsを超えない", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			// バッファと最低確保台数を併用するとMaxRentableUnitsが
			// CanRentより保守的になるため、どちらか一方のみ設定する
			total := rapid.IntRange(1, 20).Draw(rt, "total")
			minAvail := rapid.IntRange(0, total).Draw(rt, "minAvail")
			buffer := 0
			if minAvail == 0 {
				buffer = rapid.IntRange(0, total-1).Draw(rt, "buffer")
			}
			a, err := NewAvailability(total, minAvail, rapid.IntRange(1, total).Draw(rt, "maxPer"), buffer)
			if err != nil {
				rt.Fatalf("台数設定の生成に失敗: %v", err)
			}
			rented := rapid.IntRange(0, total).Draw(rt, "rented")
			requested := rapid.IntRange(1, total).Draw(rt, "requested")

			if a.CanRent(requested, rented) && requested > a.MaxRentableUnits(rented) {
				rt.Fatalf("%d台貸し出せるのに最大値は %d (設定=%+v, 貸出中=%d)",
					requested, a.MaxRentableUnits(rented), a, rented)
			}
		})
	})
}
