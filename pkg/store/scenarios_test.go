package store

import "testing"

// TestScenarioCreateThenAcceptRemapsChildFKs is §8 scenario 1.
func TestScenarioCreateThenAcceptRemapsChildFKs(t *testing.T) {
	reg := testRegistry()
	account, _ := reg.EntityType("Account")
	campaign, _ := reg.EntityType("Campaign")

	v := New()
	v, _, accountKey := account.Current.Create(v, Record{"name": "A"})
	if accountKey != Key(int64(-1)) {
		t.Fatalf("account key = %v, want -1", accountKey)
	}
	v, _, campaignKey := campaign.Current.Create(v, Record{"name": "C", "account_id": accountKey})
	if campaignKey != Key(int64(-2)) {
		t.Fatalf("campaign key = %v, want -2", campaignKey)
	}

	v, err := account.Current.Accept(v, accountKey, Record{"id": int64(5), "name": "A"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	gotCampaign, ok := campaign.Current.Get(v, campaignKey)
	if !ok {
		t.Fatalf("campaign %v missing from current", campaignKey)
	}
	if gotCampaign["account_id"] != int64(5) {
		t.Fatalf("campaign account_id = %v, want 5", gotCampaign["account_id"])
	}

	currentAccounts := account.Current.GetAll(v)
	if len(currentAccounts) != 1 {
		t.Fatalf("len(current accounts) = %d, want 1", len(currentAccounts))
	}
	if currentAccounts[int64(5)]["name"] != "A" {
		t.Fatalf("unexpected current account: %#v", currentAccounts)
	}

	initialAccounts := account.Initial.GetAll(v)
	if len(initialAccounts) != 1 || initialAccounts[int64(5)]["name"] != "A" {
		t.Fatalf("unexpected initial accounts: %#v", initialAccounts)
	}
}

// TestScenarioDeleteCascades is §8 scenario 2.
func TestScenarioDeleteCascades(t *testing.T) {
	reg := testRegistry()
	account, _ := reg.EntityType("Account")
	campaign, _ := reg.EntityType("Campaign")
	ad, _ := reg.EntityType("Ad")

	v := New()
	v, err := account.Initial.Load(v, []any{Record{"id": int64(1)}})
	if err != nil {
		t.Fatalf("load account: %v", err)
	}
	v, err = campaign.Initial.Load(v, []any{Record{"id": int64(2), "account_id": int64(1)}})
	if err != nil {
		t.Fatalf("load campaign: %v", err)
	}
	v, err = ad.Initial.Load(v, []any{Record{"id": int64(3), "campaign_id": int64(2)}})
	if err != nil {
		t.Fatalf("load ad: %v", err)
	}

	v, err = account.Current.Delete(v, int64(1))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	v, err = account.Deleted.Accept(v, int64(1))
	if err != nil {
		t.Fatalf("accept delete: %v", err)
	}

	for _, et := range []*EntityType{account, campaign, ad} {
		if got := et.Current.GetAll(v); len(got) != 0 {
			t.Errorf("%s current not empty: %#v", et.Name(), got)
		}
		if got := et.Initial.GetAll(v); len(got) != 0 {
			t.Errorf("%s initial not empty: %#v", et.Name(), got)
		}
		if got := et.Deleted.GetAll(v); len(got) != 0 {
			t.Errorf("%s deleted not empty: %#v", et.Name(), got)
		}
	}
}

// TestScenarioRejectAfterEditRestoresBaseline is §8 scenario 3.
func TestScenarioRejectAfterEditRestoresBaseline(t *testing.T) {
	reg := testRegistry()
	account, _ := reg.EntityType("Account")

	v := New()
	v, err := account.Initial.Load(v, []any{Record{"id": int64(1), "name": "A"}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	v = account.Current.Set(v, int64(1), Record{"id": int64(1), "name": "B"})
	v = account.Current.Reject(v, int64(1))

	got, ok := account.Current.Get(v, int64(1))
	if !ok || got["name"] != "A" {
		t.Fatalf("current after reject = %#v", got)
	}
	if changed := account.Current.GetAllChanged(v); len(changed) != 0 {
		t.Fatalf("GetAllChanged = %#v, want empty", changed)
	}
}

// TestScenarioNewRecordDeletedIsRemoved is §8 scenario 4.
func TestScenarioNewRecordDeletedIsRemoved(t *testing.T) {
	reg := testRegistry()
	account, _ := reg.EntityType("Account")

	v := New()
	v, _, key := account.Current.Create(v, Record{"name": "X"})
	v, err := account.Current.Delete(v, key)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := account.Current.GetAll(v); len(got) != 0 {
		t.Fatalf("current not empty: %#v", got)
	}
	if got := account.Deleted.GetAll(v); len(got) != 0 {
		t.Fatalf("deleted not empty: %#v", got)
	}
}

// TestScenarioEditBackToOriginalClearsModified is §8 scenario 5.
func TestScenarioEditBackToOriginalClearsModified(t *testing.T) {
	reg := testRegistry()
	account, _ := reg.EntityType("Account")

	v := New()
	v, err := account.Initial.Load(v, []any{Record{"id": int64(1), "name": "A"}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	v = account.Current.Set(v, int64(1), Record{"id": int64(1), "name": "B"})
	v = account.Current.Set(v, int64(1), Record{"id": int64(1), "name": "A"})

	if changed := account.Current.GetAllChanged(v); len(changed) != 0 {
		t.Fatalf("GetAllChanged = %#v, want empty", changed)
	}
	rec, _ := account.Current.Get(v, int64(1))
	state, err := account.State(v, rec)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != Unchanged {
		t.Fatalf("state = %s, want UNCHANGED", state)
	}
}

// TestScenarioChangedPropertiesAreExactlyTheDiff is §8 scenario 6.
func TestScenarioChangedPropertiesAreExactlyTheDiff(t *testing.T) {
	reg := testRegistry()
	account, _ := reg.EntityType("Account")

	v := New()
	v, err := account.Initial.Load(v, []any{Record{"id": int64(1), "name": "A", "tier": "free"}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	v = account.Current.Set(v, int64(1), Record{"id": int64(1), "name": "A", "tier": "paid"})

	got := account.Current.GetChangedProperties(v, int64(1))
	want := Record{"tier": "paid"}
	if !equalRecords(got, want) {
		t.Fatalf("GetChangedProperties = %#v, want %#v", got, want)
	}
}
