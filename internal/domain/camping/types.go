package camping

// Status values are persisted verbatim; the Spanish strings predate this
// service and are shared with the admin frontend.
type Status string

const (
	StatusPending       Status = "pendiente"
	StatusConfirmed     Status = "confirmado"
	StatusActive        Status = "activo"
	StatusCompleted     Status = "completado"
	StatusExpired       Status = "expirado"
	StatusArchivedAdmin Status = "archivado_admin"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusExpired, StatusArchivedAdmin:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusExpired, StatusArchivedAdmin:
		return true
	default:
		return false
	}
}

// ConsumesUnit reports whether a record in this status holds one service unit.
// Units are taken at confirmation, not at creation.
func (s Status) ConsumesUnit() bool {
	return s == StatusConfirmed || s == StatusActive
}

type Source string

const (
	SourceWeb   Source = "web"
	SourceAdmin Source = "admin"
)

type Lang string

const (
	LangES Lang = "es"
	LangEN Lang = "en"
	LangPT Lang = "pt"
)

// SafeLang falls back to Spanish for any unrecognized tag.
func SafeLang(value string) Lang {
	switch Lang(value) {
	case LangES, LangEN, LangPT:
		return Lang(value)
	default:
		return LangES
	}
}

func (l Lang) String() string {
	return string(l)
}
