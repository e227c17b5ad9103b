package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"famlink/internal/models"
	"famlink/internal/repository"
)

func TestChildService_SharedWithPairedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "amina")
	b := env.register(t, "bilal")
	c := env.register(t, "camila")
	env.pair(t, a, b)

	bd := models.NewDate(time.Date(2018, 3, 4, 0, 0, 0, 0, time.UTC))
	aisha, err := env.children.CreateChild(ctx, a.ID, ChildInput{Name: " Aisha ", BirthDate: &bd, Gender: "female"}, []int64{b.ID})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	if aisha.Name != "Aisha" {
		t.Errorf("Name = %q, want trimmed", aisha.Name)
	}
	if !slices.Equal(aisha.Members, []int64{a.ID, b.ID}) {
		t.Errorf("Members = %v, want owner first then invited", aisha.Members)
	}

	for _, id := range []int64{a.ID, b.ID} {
		visible, err := env.children.ListVisibleChildren(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(ids(visible), []int64{aisha.ID}) {
			t.Errorf("account %d sees %v, want [%d]", id, ids(visible), aisha.ID)
		}
	}

	visible, err := env.children.ListVisibleChildren(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 0 {
		t.Errorf("stranger sees %v", ids(visible))
	}
	if _, err := env.children.GetChild(ctx, c.ID, aisha.ID); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("GetChild() by stranger error = %v, want ErrChildNotFound", err)
	}

	// Unpairing does not revoke existing membership.
	if err := env.pairing.Unpair(ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.children.GetChild(ctx, b.ID, aisha.ID); err != nil {
		t.Errorf("member lost access after unpair: %v", err)
	}
}

func TestChildService_CreateErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "amina")
	b := env.register(t, "bilal")

	tests := []struct {
		name    string
		owner   int64
		input   ChildInput
		invited []int64
		wantErr error
	}{
		{name: "blank name", owner: a.ID, input: ChildInput{Name: "  "}, wantErr: ErrInvalidInput},
		{name: "bad gender", owner: a.ID, input: ChildInput{Name: "Aisha", Gender: "x"}, wantErr: ErrInvalidInput},
		{name: "unpaired invitee", owner: a.ID, input: ChildInput{Name: "Aisha"}, invited: []int64{b.ID}, wantErr: ErrMemberNotPaired},
		{name: "missing owner", owner: 9999, input: ChildInput{Name: "Aisha"}, wantErr: ErrAccountNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.children.CreateChild(ctx, tt.owner, tt.input, tt.invited)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateChild() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	visible, err := env.children.ListVisibleChildren(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 0 {
		t.Errorf("failed creates left children behind: %v", ids(visible))
	}
}

func TestChildService_OwnerInInvitedListIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	a := env.register(t, "amina")

	child, err := env.children.CreateChild(context.Background(), a.ID, ChildInput{Name: "Aisha"}, []int64{a.ID})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	if !slices.Equal(child.Members, []int64{a.ID}) {
		t.Errorf("Members = %v, want [%d]", child.Members, a.ID)
	}
}

func TestChildService_Quota(t *testing.T) {
	env := newTestEnvWithPolicy(t, "multi", 2)
	ctx := context.Background()
	a := env.register(t, "amina")

	for _, name := range []string{"Aisha", "Omar"} {
		if _, err := env.children.CreateChild(ctx, a.ID, ChildInput{Name: name}, nil); err != nil {
			t.Fatalf("CreateChild(%s) error = %v", name, err)
		}
	}
	if _, err := env.children.CreateChild(ctx, a.ID, ChildInput{Name: "Zain"}, nil); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("CreateChild() over limit error = %v, want ErrQuotaExceeded", err)
	}

	accounts := repository.NewAccountRepository(env.db)
	if _, err := accounts.SetPremium(ctx, a.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := env.children.CreateChild(ctx, a.ID, ChildInput{Name: "Zain"}, nil); err != nil {
		t.Errorf("premium CreateChild() error = %v", err)
	}
}

func TestChildService_UnlimitedQuota(t *testing.T) {
	env := newTestEnvWithPolicy(t, "multi", 0)
	a := env.register(t, "amina")

	for i := 0; i < 5; i++ {
		if _, err := env.children.CreateChild(context.Background(), a.ID, ChildInput{Name: "Child"}, nil); err != nil {
			t.Fatalf("CreateChild() #%d error = %v", i, err)
		}
	}
}

func TestChildService_MemberUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "amina")
	b := env.register(t, "bilal")
	c := env.register(t, "camila")
	env.pair(t, a, b)

	child, err := env.children.CreateChild(ctx, a.ID, ChildInput{Name: "Aisha"}, []int64{b.ID})
	if err != nil {
		t.Fatal(err)
	}

	name := " Aisha B "
	updated, err := env.children.UpdateChild(ctx, b.ID, child.ID, models.ChildPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateChild() by member error = %v", err)
	}
	if updated.Name != "Aisha B" {
		t.Errorf("Name = %q, want %q", updated.Name, "Aisha B")
	}

	if _, err := env.children.UpdateChild(ctx, b.ID, child.ID, models.ChildPatch{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("UpdateChild() empty patch error = %v", err)
	}
	if _, err := env.children.UpdateChild(ctx, c.ID, child.ID, models.ChildPatch{Name: &name}); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("UpdateChild() by stranger error = %v", err)
	}
	if err := env.children.DeleteChild(ctx, c.ID, child.ID); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("DeleteChild() by stranger error = %v", err)
	}

	if err := env.children.DeleteChild(ctx, b.ID, child.ID); err != nil {
		t.Fatalf("DeleteChild() by member error = %v", err)
	}
	if _, err := env.children.GetChild(ctx, a.ID, child.ID); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("GetChild() after delete error = %v", err)
	}
}
