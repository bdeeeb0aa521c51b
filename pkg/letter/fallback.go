package letter

// Field names a letter value that has a literal default.
type Field string

const (
	FieldSchoolName     Field = "schoolName"
	FieldMotto          Field = "motto"
	FieldHeadquarters   Field = "headquartersAddress"
	FieldAnnex          Field = "annexAddress"
	FieldPhones         Field = "phones"
	FieldEmail          Field = "email"
	FieldWebsite        Field = "website"
	FieldDeadline       Field = "deadline"
	FieldAdmissionClass Field = "admissionClass"
	FieldAdmissionYear  Field = "admissionYear"
)

// Defaults is the fallback table. Each field falls back on its own when its
// value is empty.
var Defaults = map[Field]string{
	FieldSchoolName:     "ECCOWAS (COSMOPOLITAN) COLLEGE",
	FieldMotto:          "Omo wa labake",
	FieldHeadquarters:   "Omolabake Avenue, G.R.A. off Stark/Gacool Rd. along Idiroko Rd. Sango-Ota, Ogun State.",
	FieldAnnex:          "Nascon Rd. Mascon Gate, Ijoko, Ijoko – Ota. P.O. Box 1147, Ota, Ogun State, Nigeria.",
	FieldPhones:         "08033774645, 08051667070",
	FieldEmail:          "eccolabschools@gmail.com",
	FieldWebsite:        "www.eccowascollege.com",
	FieldDeadline:       "Monday the 5th of February 2024",
	FieldAdmissionClass: "S.S.S 1",
	FieldAdmissionYear:  "2023/2024",
}

// Or returns v, or the default for f when v is empty.
func Or(f Field, v string) string {
	if v != "" {
		return v
	}
	return Defaults[f]
}

// Phones joins the two numbers. Without a first number the default pair is
// used even if a second one is stored.
func Phones(phone1, phone2 string) string {
	switch {
	case phone1 == "":
		return Defaults[FieldPhones]
	case phone2 == "":
		return phone1
	default:
		return phone1 + ", " + phone2
	}
}
