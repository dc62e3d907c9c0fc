package seed

import (
	"context"
	"time"

	"biovault/internal/domain/access"
	"biovault/internal/domain/audit"
	"biovault/internal/domain/notifications"
	"biovault/internal/domain/records"
	"biovault/internal/domain/users"
)

// Repos agrupa los repositorios a poblar. Solo se siembra contra los
// adapters de memoria: contra postgres los datos ya viven en la base.
type Repos struct {
	Users         users.Repository
	Records       records.Repository
	AuditLog      audit.Repository
	Notifications notifications.Repository
	Requests      access.RequestRepository
	Grants        access.GrantRepository
}

// DemoUserID y DemoEmergencyID son estables para poder navegar el demo
// sin buscar ids (X-Debug-User-ID y el link /emergency/{id}).
const (
	DemoUserID      = "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb"
	DemoEmergencyID = "em-sarah-johnson"
)

// Load siembra el estado de referencia del demo: Sarah Johnson, tres
// registros, dos pedidos pendientes, un grant activo, tres entradas de
// auditoría y las notificaciones iniciales. now ancla los offsets
// relativos ("hace 2 días", "expira en 2 días").
func Load(ctx context.Context, repos Repos, now time.Time) error {
	if err := seedUser(ctx, repos.Users); err != nil {
		return err
	}
	if err := seedRecords(ctx, repos.Records, now); err != nil {
		return err
	}
	if err := seedRequests(ctx, repos.Requests, now); err != nil {
		return err
	}
	if err := seedGrants(ctx, repos.Grants, now); err != nil {
		return err
	}
	if err := seedAudit(ctx, repos.AuditLog, now); err != nil {
		return err
	}
	return seedNotifications(ctx, repos.Notifications, now)
}

// LoadUser siembra solo el perfil demo. Útil cuando el resto del estado
// vive en postgres pero el perfil sigue en memoria.
func LoadUser(ctx context.Context, repo users.Repository) error {
	return seedUser(ctx, repo)
}

func seedUser(ctx context.Context, repo users.Repository) error {
	return repo.Create(ctx, users.User{
		ID:          DemoUserID,
		EmergencyID: DemoEmergencyID,
		Name:        "Sarah Johnson",
		Email:       "sarah.johnson@email.com",
		DateOfBirth: "1985-06-15",
		Tier:        "Plus",

		BloodType:         "B+",
		Allergies:         []string{"Penicillin", "Latex", "Shellfish"},
		ChronicConditions: []string{"Type 2 Diabetes", "Hypertension"},
		Medications: []users.Medication{
			{Name: "Metformin", Dosage: "1000mg", Frequency: "2x daily"},
			{Name: "Lisinopril", Dosage: "10mg", Frequency: "1x daily"},
		},
		EmergencyContacts: []users.EmergencyContact{
			{Name: "Michael Johnson", Relationship: "Spouse", Phone: "(555) 123-4567"},
			{Name: "Linda Carter", Relationship: "Sister", Phone: "(555) 987-6543"},
		},

		// Default de la referencia: todos los campos incluidos.
		EmergencyPack: users.EmergencyPack{
			BloodType:         true,
			Allergies:         true,
			Medications:       true,
			Conditions:        true,
			EmergencyContacts: true,
		},
	})
}

func seedRecords(ctx context.Context, repo records.Repository, now time.Time) error {
	recs := []records.HealthRecord{
		{
			ID:         "doc_001",
			Name:       "Blood Test Results - Oct 2025",
			Type:       "Lab Results",
			Category:   "Blood Work",
			UploadedAt: now.Add(-2 * 24 * time.Hour),
			Size:       "2.3 MB",
			IPFSHash:   "QmX7Ym1FgB9vZj9x",
			Encrypted:  true,
		},
		{
			ID:         "doc_002",
			Name:       "Chest X-Ray",
			Type:       "Imaging",
			Category:   "X-Rays",
			UploadedAt: now.Add(-7 * 24 * time.Hour),
			Size:       "5.7 MB",
			IPFSHash:   "QmA9B2c3d4E5f",
			Encrypted:  true,
		},
		{
			ID:         "doc_003",
			Name:       "Annual Physical Summary",
			Type:       "Visit Summary",
			Category:   "Primary Care",
			UploadedAt: now.Add(-14 * 24 * time.Hour),
			Size:       "856 KB",
			IPFSHash:   "QmC7D8e9F0g1H",
			Encrypted:  true,
		},
	}
	for _, rec := range recs {
		if err := repo.Create(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func seedRequests(ctx context.Context, repo access.RequestRepository, now time.Time) error {
	reqs := []access.Request{
		{
			ID:                "req_001",
			Provider:          "Dr. Maria Rodriguez",
			Institution:       "City General Hospital",
			Reason:            "Routine follow-up appointment",
			RequestedDuration: "48 hours",
			DataCategories:    []string{"Lab Results", "Medications", "Visit History"},
			Timestamp:         now.Add(-30 * time.Minute),
			Status:            access.RequestPending,
		},
		{
			ID:                "req_002",
			Provider:          "Dr. James Chen",
			Institution:       "Heart & Vascular Center",
			Reason:            "Cardiology consultation",
			RequestedDuration: "7 days",
			DataCategories:    []string{"Imaging", "Lab Results", "Visit History"},
			Timestamp:         now.Add(-2 * time.Hour),
			Status:            access.RequestPending,
		},
	}
	for _, req := range reqs {
		if err := repo.Create(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func seedGrants(ctx context.Context, repo access.GrantRepository, now time.Time) error {
	return repo.Create(ctx, access.Grant{
		ID:             "grant_001",
		Provider:       "Dr. Emily Thompson",
		Institution:    "Family Health Clinic",
		GrantedAt:      now.Add(-5 * 24 * time.Hour),
		ExpiresAt:      now.Add(2 * 24 * time.Hour),
		DataCategories: []string{"All Records"},
		AccessCount:    3,
	})
}

func seedAudit(ctx context.Context, repo audit.Repository, now time.Time) error {
	// Append en orden cronológico: el repo lista newest-first.
	entries := []audit.Entry{
		{
			ID:        "audit_003",
			EventType: audit.EventDocumentUploaded,
			Actor:     audit.ActorOwner,
			Resource:  "Chest X-Ray",
			Timestamp: now.Add(-7 * 24 * time.Hour),
			Location:  audit.LocationLocal,
		},
		{
			ID:        "audit_002",
			EventType: audit.EventAccessApproved,
			Actor:     audit.ActorOwner,
			Resource:  "Dr. Emily Thompson - 7 day access",
			Timestamp: now.Add(-5 * 24 * time.Hour),
			Location:  audit.LocationLocal,
		},
		{
			ID:        "audit_001",
			EventType: audit.EventDocumentViewed,
			Actor:     "Dr. Emily Thompson",
			Resource:  "Blood Test Results - Oct 2025",
			Timestamp: now.Add(-2 * time.Hour),
			Location:  "City General Hospital",
		},
	}
	for _, e := range entries {
		if err := repo.Append(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func seedNotifications(ctx context.Context, repo notifications.Repository, now time.Time) error {
	items := []notifications.Notification{
		{
			ID:        "notif_001",
			Type:      notifications.TypeAccessRequest,
			Message:   "Dr. Maria Rodriguez requested access to your records.",
			Timestamp: now.Add(-30 * time.Minute),
			IsRead:    false,
			LinkTo:    notifications.LinkAccess,
		},
		{
			ID:        "notif_002",
			Type:      notifications.TypeAccessRequest,
			Message:   "Dr. James Chen requested access to your records.",
			Timestamp: now.Add(-2 * time.Hour),
			IsRead:    false,
			LinkTo:    notifications.LinkAccess,
		},
		{
			ID:        "notif_003",
			Type:      notifications.TypeGeneral,
			Message:   "Welcome to BioVault. Your records are encrypted and under your control.",
			Timestamp: now.Add(-14 * 24 * time.Hour),
			IsRead:    true,
			LinkTo:    notifications.LinkDashboard,
		},
	}
	for _, n := range items {
		if err := repo.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
