package member

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRepository_CreateAndGetByID(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	m := &Member{
		Name:                   "Mary Banda",
		MobileNo:               "+260977123456",
		EmailAddress:           "mary@example.com",
		PhysicalAddress:        "12 Chilimbulu Road",
		JoinDate:               "2019-08-04",
		DateOfBirth:            "1990-02-11",
		Gender:                 "Female",
		Baptized:               true,
		BaptismDate:            "2019-12-25",
		EmergencyContactName:   "John Banda",
		EmergencyContactNumber: "+260966000111",
		Notes:                  "Choir member",
	}

	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if m.ID == 0 {
		t.Fatal("Create() should populate the ID")
	}
	if m.MembershipStatus != StatusActive {
		t.Errorf("MembershipStatus = %q, want default %q", m.MembershipStatus, StatusActive)
	}

	got, err := repo.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Mary Banda" {
		t.Errorf("Name = %q, want %q", got.Name, "Mary Banda")
	}
	if got.MobileNo != "+260977123456" {
		t.Errorf("MobileNo = %q, want %q", got.MobileNo, "+260977123456")
	}
	if !got.Baptized || got.BaptismDate != "2019-12-25" {
		t.Errorf("baptism fields = (%v, %q), want (true, 2019-12-25)", got.Baptized, got.BaptismDate)
	}
	if got.EmergencyContactName != "John Banda" {
		t.Errorf("EmergencyContactName = %q, want %q", got.EmergencyContactName, "John Banda")
	}
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)

	_, err := repo.GetByID(context.Background(), 404)
	if !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("error = %v, want ErrMemberNotFound", err)
	}
}

func TestRepository_GetByEmail(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	m := &Member{Name: "Findable", EmailAddress: "find@example.com", JoinDate: "2021-01-01", DateOfBirth: "1980-01-01"}
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByEmail(ctx, "find@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != m.ID {
		t.Errorf("ID = %d, want %d", got.ID, m.ID)
	}

	if _, err := repo.GetByEmail(ctx, "absent@example.com"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("error = %v, want ErrMemberNotFound", err)
	}
}

func TestRepository_List_OrderedByName(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedTestMember(t, db, "Zulu")
	seedTestMember(t, db, "Achebe")
	seedTestMember(t, db, "Mwansa")

	members, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("len(members) = %d, want 3", len(members))
	}
	if members[0].Name != "Achebe" || members[2].Name != "Zulu" {
		t.Errorf("order = [%s, %s, %s], want alphabetical", members[0].Name, members[1].Name, members[2].Name)
	}
}

func TestRepository_ListByStatus(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedTestMember(t, db, "Active One")
	moved := seedTestMember(t, db, "Moved Away")
	moved.MembershipStatus = StatusTransferred
	if err := repo.Update(ctx, moved); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	active, err := repo.ListByStatus(ctx, StatusActive)
	if err != nil {
		t.Fatalf("ListByStatus() error = %v", err)
	}
	if len(active) != 1 || active[0].Name != "Active One" {
		t.Errorf("active = %+v, want only Active One", active)
	}

	transferred, _ := repo.ListByStatus(ctx, StatusTransferred)
	if len(transferred) != 1 {
		t.Errorf("len(transferred) = %d, want 1", len(transferred))
	}
}

func TestRepository_Search(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	m := &Member{Name: "Grace Phiri", EmailAddress: "grace@example.com", MobileNo: "0977555000",
		JoinDate: "2022-05-01", DateOfBirth: "1995-09-09"}
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	seedTestMember(t, db, "Unrelated")

	for _, query := range []string{"Phiri", "grace@", "977555"} {
		got, err := repo.Search(ctx, query)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", query, err)
		}
		if len(got) != 1 || got[0].ID != m.ID {
			t.Errorf("Search(%q) = %d results, want Grace Phiri only", query, len(got))
		}
	}

	none, _ := repo.Search(ctx, "nothing matches this")
	if len(none) != 0 {
		t.Errorf("Search(miss) = %d results, want 0", len(none))
	}
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	m := seedTestMember(t, db, "Editable")
	m.Name = "Edited"
	m.Baptized = true
	m.BaptismDate = "2023-04-09"
	if err := repo.Update(ctx, m); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, m.ID)
	if got.Name != "Edited" || !got.Baptized {
		t.Errorf("got = (%q, %v), want (Edited, true)", got.Name, got.Baptized)
	}

	if err := repo.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, m.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("error after delete = %v, want ErrMemberNotFound", err)
	}
	if err := repo.Delete(ctx, m.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("second Delete() error = %v, want ErrMemberNotFound", err)
	}
}

func TestRepository_Statistics(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	thisYear := time.Now().UTC().Format("2006") + "-01-02"

	records := []*Member{
		{Name: "A", JoinDate: thisYear, DateOfBirth: "1990-01-01", Gender: "Female", Baptized: true},
		{Name: "B", JoinDate: "2018-06-01", DateOfBirth: "1985-01-01", Gender: "Male"},
		{Name: "C", JoinDate: "2017-02-01", DateOfBirth: "1970-01-01", Gender: "Male", MembershipStatus: StatusInactive},
	}
	for _, m := range records {
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("Create(%s) error = %v", m.Name, err)
		}
	}

	stats, err := repo.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Active != 2 {
		t.Errorf("Active = %d, want 2", stats.Active)
	}
	if stats.Baptized != 1 {
		t.Errorf("Baptized = %d, want 1", stats.Baptized)
	}
	if stats.ByGender["Male"] != 2 {
		t.Errorf("ByGender[Male] = %d, want 2", stats.ByGender["Male"])
	}
	if stats.ByStatus[StatusInactive] != 1 {
		t.Errorf("ByStatus[Inactive] = %d, want 1", stats.ByStatus[StatusInactive])
	}
	if stats.NewThisYear != 1 {
		t.Errorf("NewThisYear = %d, want 1", stats.NewThisYear)
	}
}

func TestRepository_UpcomingBirthdays(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	farOff := time.Now().UTC().AddDate(0, 0, 120)

	soon := &Member{Name: "Soon", JoinDate: "2020-01-01",
		DateOfBirth: "1990-" + tomorrow.Format("01-02")}
	later := &Member{Name: "Later", JoinDate: "2020-01-01",
		DateOfBirth: "1990-" + farOff.Format("01-02")}
	for _, m := range []*Member{soon, later} {
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("Create(%s) error = %v", m.Name, err)
		}
	}

	birthdays, err := repo.UpcomingBirthdays(ctx, 30)
	if err != nil {
		t.Fatalf("UpcomingBirthdays() error = %v", err)
	}
	if len(birthdays) != 1 {
		t.Fatalf("len(birthdays) = %d, want 1", len(birthdays))
	}
	if birthdays[0].Member.Name != "Soon" {
		t.Errorf("Name = %q, want Soon", birthdays[0].Member.Name)
	}
	if birthdays[0].TurnsAge < 30 {
		t.Errorf("TurnsAge = %d, want >= 30", birthdays[0].TurnsAge)
	}
}
