package timeslot

// CreditType はクレジットオプションの種別を表す
type CreditType string

const (
	CreditFixed     CreditType = "fixed"
	CreditFreeplay  CreditType = "freeplay"
	CreditUnlimited CreditType = "unlimited"
)

// CreditOption は時間数ごとの料金設定を表す
type CreditOption struct {
	Type         CreditType  `json:"type"`
	Hours        []int       `json:"hours"`
	Prices       map[int]int `json:"prices"`
	FixedCredits *int        `json:"fixed_credits,omitempty"`
}

// Validate はクレジットオプションの検証を行う
func (o CreditOption) Validate() error {
	if len(o.Hours) == 0 {
		return ErrCreditHoursRequired
	}
	for _, h := range o.Hours {
		price, ok := o.Prices[h]
		if !ok || price < 0 {
			return ErrCreditPriceInvalid
		}
	}
	if o.Type == CreditFixed {
		if o.FixedCredits == nil || *o.FixedCredits <= 0 {
			return ErrFixedCreditsRequired
		}
	}
	return nil
}

// PriceFor は指定時間数の料金を返す。未設定の場合はfalseを返す
func (o CreditOption) PriceFor(hours int) (int, bool) {
	price, ok := o.Prices[hours]
	return price, ok
}
