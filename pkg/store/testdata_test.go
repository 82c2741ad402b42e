package store

// testTypedefs builds the Account/Campaign/Ad relation graph used
// throughout §8 of the specification:
//
//	Account  (key: id)                  iFK: {Campaign: account_id}
//	Campaign (key: id, FK: {Account: account_id})  iFK: {Ad: campaign_id}
//	Ad       (key: id, FK: {Campaign: campaign_id})
func testTypedefs() map[string]Typedef {
	return map[string]Typedef{
		"Account": {
			Name: "Account",
			Key:  Path{"id"},
			InverseForeignKeys: map[string]Path{
				"Campaign": {"account_id"},
			},
		},
		"Campaign": {
			Name: "Campaign",
			Key:  Path{"id"},
			ForeignKeys: map[string]Path{
				"Account": {"account_id"},
			},
			InverseForeignKeys: map[string]Path{
				"Ad": {"campaign_id"},
			},
		},
		"Ad": {
			Name: "Ad",
			Key:  Path{"id"},
			ForeignKeys: map[string]Path{
				"Campaign": {"campaign_id"},
			},
		},
	}
}

func testRegistry() *Registry {
	return NewRegistry(testTypedefs())
}
