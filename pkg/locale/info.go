package locale

// NumberConvention describes how a locale writes plain numbers.
type NumberConvention struct {
	DecimalSep string
	GroupSep   string
	GroupSize  int
}

// CurrencyConvention describes where a locale places the currency symbol.
type CurrencyConvention struct {
	SymbolBefore bool
	SymbolSpace  bool
}

// Info is the full convention set for one locale. Month and day tables are
// indexed the way the time package counts: Months[0] is January and
// Days[0] is Sunday.
type Info struct {
	Tag          Tag
	Number       NumberConvention
	Currency     CurrencyConvention
	Months       [12]string
	MonthsAbbrev [12]string
	Days         [7]string
	DaysAbbrev   [7]string
}

var infoByTag = map[Tag]*Info{}
var infoByBase = map[string]*Info{}

func register(info *Info) {
	infoByTag[info.Tag] = info
	base := info.Tag.Base()
	if _, ok := infoByBase[base]; !ok {
		infoByBase[base] = info
	}
}

func init() {
	register(&Info{
		Tag:    "id_ID",
		Number: NumberConvention{DecimalSep: ",", GroupSep: ".", GroupSize: 3},
		// Rupiah amounts are written as Rp15.000, no space.
		Currency:     CurrencyConvention{SymbolBefore: true, SymbolSpace: false},
		Months:       [12]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"},
		MonthsAbbrev: [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"},
		Days:         [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"},
		DaysAbbrev:   [7]string{"Min", "Sen", "Sel", "Rab", "Kam", "Jum", "Sab"},
	})
	register(&Info{
		Tag:          "en_US",
		Number:       NumberConvention{DecimalSep: ".", GroupSep: ",", GroupSize: 3},
		Currency:     CurrencyConvention{SymbolBefore: true, SymbolSpace: false},
		Months:       [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		MonthsAbbrev: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		Days:         [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		DaysAbbrev:   [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	})
	register(&Info{
		Tag:          "en_GB",
		Number:       NumberConvention{DecimalSep: ".", GroupSep: ",", GroupSize: 3},
		Currency:     CurrencyConvention{SymbolBefore: true, SymbolSpace: false},
		Months:       [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		MonthsAbbrev: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		Days:         [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		DaysAbbrev:   [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	})
	register(&Info{
		Tag:          "fr_FR",
		Number:       NumberConvention{DecimalSep: ",", GroupSep: " ", GroupSize: 3},
		Currency:     CurrencyConvention{SymbolBefore: false, SymbolSpace: true},
		Months:       [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		MonthsAbbrev: [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
		Days:         [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		DaysAbbrev:   [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
	})
	register(&Info{
		Tag:          "de_DE",
		Number:       NumberConvention{DecimalSep: ",", GroupSep: ".", GroupSize: 3},
		Currency:     CurrencyConvention{SymbolBefore: false, SymbolSpace: true},
		Months:       [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		MonthsAbbrev: [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"},
		Days:         [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		DaysAbbrev:   [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
	})
	register(&Info{
		Tag:          "es_ES",
		Number:       NumberConvention{DecimalSep: ",", GroupSep: ".", GroupSize: 3},
		Currency:     CurrencyConvention{SymbolBefore: false, SymbolSpace: true},
		Months:       [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		MonthsAbbrev: [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"},
		Days:         [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		DaysAbbrev:   [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
	})
	register(&Info{
		Tag:          "it_IT",
		Number:       NumberConvention{DecimalSep: ",", GroupSep: ".", GroupSize: 3},
		Currency:     CurrencyConvention{SymbolBefore: false, SymbolSpace: true},
		Months:       [12]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno", "luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
		MonthsAbbrev: [12]string{"gen", "feb", "mar", "apr", "mag", "giu", "lug", "ago", "set", "ott", "nov", "dic"},
		Days:         [7]string{"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato"},
		DaysAbbrev:   [7]string{"dom", "lun", "mar", "mer", "gio", "ven", "sab"},
	})
	register(&Info{
		Tag:    "pt_BR",
		Number: NumberConvention{DecimalSep: ",", GroupSep: ".", GroupSize: 3},
		// Real amounts read R$ 1.234,50, symbol first with a space.
		Currency:     CurrencyConvention{SymbolBefore: true, SymbolSpace: true},
		Months:       [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		MonthsAbbrev: [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
		Days:         [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
		DaysAbbrev:   [7]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"},
	})
}
