package core

import "encoding/json"

// The optional boolean keys of transactions and categories are omitted
// when false unless the decoded document spelled them out.

func optionalFlag(v, explicitFalse bool) *bool {
	if !v && !explicitFalse {
		return nil
	}
	return &v
}

func (tx Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return json.Marshal(struct {
		plain
		IsRecurring *bool `json:"isRecurring,omitempty"`
	}{plain(tx), optionalFlag(tx.IsRecurring, tx.notRecurring)})
}

func (tx *Transaction) UnmarshalJSON(b []byte) error {
	type plain Transaction
	var in struct {
		plain
		IsRecurring *bool `json:"isRecurring"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*tx = Transaction(in.plain)
	if in.IsRecurring != nil {
		tx.IsRecurring = *in.IsRecurring
		tx.notRecurring = !*in.IsRecurring
	}
	return nil
}

func (c Category) MarshalJSON() ([]byte, error) {
	type plain Category
	return json.Marshal(struct {
		plain
		IsCustom *bool `json:"isCustom,omitempty"`
	}{plain(c), optionalFlag(c.IsCustom, c.notCustom)})
}

func (c *Category) UnmarshalJSON(b []byte) error {
	type plain Category
	var in struct {
		plain
		IsCustom *bool `json:"isCustom"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*c = Category(in.plain)
	if in.IsCustom != nil {
		c.IsCustom = *in.IsCustom
		c.notCustom = !*in.IsCustom
	}
	return nil
}
