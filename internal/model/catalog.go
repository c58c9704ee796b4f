package model

// FieldKind describes the type of value a field holds
type FieldKind string

const (
	FieldKindText FieldKind = "text"
	FieldKindBool FieldKind = "bool"
)

// Field is one question of the questionnaire
type Field struct {
	Key       string
	Label     string
	Kind      FieldKind
	Required  bool   // must be answered before leaving its step
	AppliesIf string // expr condition over the draft; empty means always
}

// Section groups the fields answered on one step
type Section struct {
	ID     string
	Title  string
	Fields []Field
}

// Step is one screen of the wizard. Welcome has no section.
type Step struct {
	Name    string
	Section *Section
}

// Fields returns the fields of the step's section, if any
func (s Step) Fields() []Field {
	if s.Section == nil {
		return nil
	}
	return s.Section.Fields
}

// HasField reports whether key belongs to this step
func (s Step) HasField(key string) bool {
	for _, f := range s.Fields() {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Sections lists the questionnaire sections in review order
var Sections = []Section{
	{
		ID:    "basic",
		Title: "Información Básica",
		Fields: []Field{
			{Key: "brideName", Label: "Nombre de la Novia", Kind: FieldKindText, Required: true},
			{Key: "groomName", Label: "Nombre del Novio", Kind: FieldKindText, Required: true},
			{Key: "nameDisplayPreference", Label: "Preferencia de Nombres", Kind: FieldKindText},
		},
	},
	{
		ID:    "dateLocation",
		Title: "Fecha y Lugar",
		Fields: []Field{
			{Key: "weddingDate", Label: "Fecha de la Boda", Kind: FieldKindText, Required: true},
			{Key: "ceremonyPlace", Label: "Lugar de la Ceremonia", Kind: FieldKindText},
			{Key: "ceremonyAddress", Label: "Dirección Ceremonia", Kind: FieldKindText},
			{Key: "isSameLocation", Label: "Ceremonia y Recepción en el Mismo Lugar", Kind: FieldKindBool},
			{Key: "receptionPlace", Label: "Lugar de la Recepción", Kind: FieldKindText, AppliesIf: "isSameLocation != true"},
			{Key: "receptionAddress", Label: "Dirección Recepción", Kind: FieldKindText, AppliesIf: "isSameLocation != true"},
		},
	},
	{
		ID:    "schedule",
		Title: "Horarios",
		Fields: []Field{
			{Key: "ceremonyTime", Label: "Hora Ceremonia", Kind: FieldKindText},
			{Key: "receptionTime", Label: "Hora Recepción", Kind: FieldKindText},
			{Key: "otherEvents", Label: "Otros Eventos", Kind: FieldKindText},
		},
	},
	{
		ID:    "family",
		Title: "Familia y Padrinos",
		Fields: []Field{
			{Key: "brideMother", Label: "Mamá de la Novia", Kind: FieldKindText},
			{Key: "brideFather", Label: "Papá de la Novia", Kind: FieldKindText},
			{Key: "groomMother", Label: "Mamá del Novio", Kind: FieldKindText},
			{Key: "groomFather", Label: "Papá del Novio", Kind: FieldKindText},
			{Key: "padrinosAnillos", Label: "Padrinos de Anillos", Kind: FieldKindText},
			{Key: "padrinosLazo", Label: "Padrinos de Lazo", Kind: FieldKindText},
			{Key: "otherPadrinos", Label: "Otros Padrinos", Kind: FieldKindText},
		},
	},
	{
		ID:    "story",
		Title: "Nuestra Historia",
		Fields: []Field{
			{Key: "dateMet", Label: "Fecha que se Conocieron", Kind: FieldKindText},
			{Key: "dateFirstDate", Label: "Fecha de la Primera Cita", Kind: FieldKindText},
			{Key: "dateEngagement", Label: "Fecha de Compromiso", Kind: FieldKindText},
			{Key: "storyMet", Label: "Cómo se Conocieron", Kind: FieldKindText},
			{Key: "storyFirstDate", Label: "Primera Cita", Kind: FieldKindText},
			{Key: "storyProposal", Label: "La Propuesta", Kind: FieldKindText},
		},
	},
	{
		ID:    "stats",
		Title: "Estadísticas",
		Fields: []Field{
			{Key: "guestCount", Label: "Número de Invitados", Kind: FieldKindText},
			{Key: "daysTogether", Label: "Días Juntos", Kind: FieldKindText},
			{Key: "otherStats", Label: "Otras Estadísticas", Kind: FieldKindText},
		},
	},
	{
		ID:    "design",
		Title: "Diseño y Estilo",
		Fields: []Field{
			{Key: "designStyle", Label: "Estilo de Diseño", Kind: FieldKindText},
			{Key: "colorHarmony", Label: "Armonía de Colores", Kind: FieldKindText},
			{Key: "customColors", Label: "Colores Personalizados", Kind: FieldKindText, AppliesIf: `colorHarmony == "personalizado"`},
			{Key: "withMusic", Label: "¿Con Música?", Kind: FieldKindBool},
			{Key: "musicStyle", Label: "Estilo/Canción", Kind: FieldKindText, AppliesIf: "withMusic != false"},
			{Key: "designNotes", Label: "Notas de Diseño", Kind: FieldKindText},
		},
	},
	{
		ID:    "rsvp",
		Title: "RSVP",
		Fields: []Field{
			{Key: "rsvpPhone", Label: "Teléfono para Confirmar", Kind: FieldKindText},
			{Key: "rsvpDeadline", Label: "Fecha Límite", Kind: FieldKindText},
		},
	},
	{
		ID:    "additional",
		Title: "Información Adicional",
		Fields: []Field{
			{Key: "instagram", Label: "Instagram", Kind: FieldKindText},
			{Key: "facebook", Label: "Facebook", Kind: FieldKindText},
			{Key: "hashtag", Label: "Hashtag", Kind: FieldKindText},
			{Key: "dressCode", Label: "Dress Code", Kind: FieldKindText},
			{Key: "specialMessage", Label: "Mensaje Especial", Kind: FieldKindText},
			{Key: "extraInfo", Label: "Información Extra", Kind: FieldKindText},
		},
	},
}

// Steps is the wizard sequence: a welcome screen followed by one step per section
var Steps = []Step{
	{Name: "Welcome"},
	{Name: "BasicInfo", Section: &Sections[0]},
	{Name: "DateLocation", Section: &Sections[1]},
	{Name: "TimeSchedule", Section: &Sections[2]},
	{Name: "FamilyInfo", Section: &Sections[3]},
	{Name: "Story", Section: &Sections[4]},
	{Name: "Stats", Section: &Sections[5]},
	{Name: "Design", Section: &Sections[6]},
	{Name: "Rsvp", Section: &Sections[7]},
	{Name: "Messages", Section: &Sections[8]},
}

// StepCount is the number of wizard steps
var StepCount = len(Steps)

var fieldIndex = buildFieldIndex()

func buildFieldIndex() map[string]Field {
	idx := make(map[string]Field)
	for _, s := range Sections {
		for _, f := range s.Fields {
			idx[f.Key] = f
		}
	}
	return idx
}

// LookupField returns the catalog field for key
func LookupField(key string) (Field, bool) {
	f, ok := fieldIndex[key]
	return f, ok
}

// StepAt returns the step at index
func StepAt(index int) (Step, error) {
	if index < 0 || index >= len(Steps) {
		return Step{}, ErrStepOutOfRange
	}
	return Steps[index], nil
}

// AllFields returns every catalog field in section order
func AllFields() []Field {
	var out []Field
	for _, s := range Sections {
		out = append(out, s.Fields...)
	}
	return out
}
