package rental

// Availability は機種ごとの貸出可能台数の設定を表す値オブジェクト
type Availability struct {
	TotalUnits             int `json:"total_units"`
	MinUnitsAvailable      int `json:"min_units_available"`
	MaxUnitsPerReservation int `json:"max_units_per_reservation"`
	BufferUnits            int `json:"buffer_units"`
}

// NewAvailability は台数設定を作成する
func NewAvailability(totalUnits, minUnitsAvailable, maxUnitsPerReservation, bufferUnits int) (Availability, error) {
	a := Availability{
		TotalUnits:             totalUnits,
		MinUnitsAvailable:      minUnitsAvailable,
		MaxUnitsPerReservation: maxUnitsPerReservation,
		BufferUnits:            bufferUnits,
	}
	if err := a.Validate(); err != nil {
		return Availability{}, err
	}
	return a, nil
}

// Validate は台数設定の検証を行う
func (a Availability) Validate() error {
	if a.TotalUnits < 1 {
		return ErrInvalidTotalUnits
	}
	if a.MinUnitsAvailable < 0 || a.MinUnitsAvailable > a.TotalUnits {
		return ErrInvalidMinUnits
	}
	if a.MaxUnitsPerReservation < 1 || a.MaxUnitsPerReservation > a.TotalUnits {
		return ErrInvalidMaxPerReservation
	}
	if a.BufferUnits < 0 || a.BufferUnits > a.TotalUnits-1 {
		return ErrInvalidBufferUnits
	}
	return nil
}

// MaxRentableUnits は貸出中台数を踏まえて追加で貸出できる最大台数を返す
func (a Availability) MaxRentableUnits(currentlyRented int) int {
	remaining := a.TotalUnits - currentlyRented - a.BufferUnits
	max := min3(a.MaxUnitsPerReservation, remaining, remaining-a.MinUnitsAvailable)
	if max < 0 {
		return 0
	}
	return max
}

// CanRent は指定台数を追加で貸し出せるかを返す
func (a Availability) CanRent(requested, currentlyRented int) bool {
	if requested < 1 {
		return false
	}
	if requested > a.MaxUnitsPerReservation {
		return false
	}
	if a.TotalUnits-currentlyRented-a.BufferUnits < requested {
		return false
	}
	if a.TotalUnits-currentlyRented-requested < a.MinUnitsAvailable {
		return false
	}
	return true
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
