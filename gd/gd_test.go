package gd_test

import (
	"errors"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gdataerrs "github.com/jdholdren/gdata/errors"
	"github.com/jdholdren/gdata/gd"
)

// element parses a single gd element out of a wrapper that declares the
// namespace.
func element(t *testing.T, frag string) *etree.Element {
	t.Helper()

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(`<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005">`+frag+`</entry>`))
	children := doc.Root().ChildElements()
	require.Len(t, children, 1)
	return children[0]
}

// reparse writes v into a fresh wrapper and reads the single child back.
func reparse(t *testing.T, appendTo func(*etree.Element)) *etree.Element {
	t.Helper()

	root := etree.NewElement("entry")
	root.CreateAttr("xmlns", "http://www.w3.org/2005/Atom")
	root.CreateAttr("xmlns:gd", "http://schemas.google.com/g/2005")
	appendTo(root)

	doc := etree.NewDocument()
	doc.SetRoot(root)
	s, err := doc.WriteToString()
	require.NoError(t, err)

	out := etree.NewDocument()
	require.NoError(t, out.ReadFromString(s))
	return out.Root().ChildElements()[0]
}

func TestRating(t *testing.T) {
	r, err := gd.ParseRating(element(t, `<gd:rating min="1" max="5" numRaters="12" average="4.25"/>`))
	require.NoError(t, err)
	assert.Equal(t, gd.Rating{Min: 1, Max: 5, NumRaters: 12, Average: 4.25}, r)

	got, err := gd.ParseRating(reparse(t, r.AppendTo))
	require.NoError(t, err)
	assert.Equal(t, r, got)

	_, err = gd.ParseRating(element(t, `<gd:rating max="5"/>`))
	assert.True(t, errors.Is(err, gdataerrs.ErrRequiredAttributeMissing))
	assert.EqualError(t, err, "required attribute @min missing from <gd:rating>")

	_, err = gd.ParseRating(element(t, `<gd:rating min="1" max="five"/>`))
	assert.True(t, errors.Is(err, gdataerrs.ErrUnknownContent))
}

func TestWho(t *testing.T) {
	w, err := gd.ParseWho(element(t, `<gd:who email="a@example.com" rel="`+gd.RelEventAttendee+`" valueString="A">`+
		`<gd:attendeeStatus value="http://schemas.google.com/g/2005#event.accepted"/></gd:who>`))
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", w.Email)
	assert.Equal(t, gd.RelEventAttendee, w.Rel)
	assert.Equal(t, "http://schemas.google.com/g/2005#event.accepted", w.AttendeeStatus)

	got, err := gd.ParseWho(reparse(t, w.AppendTo))
	require.NoError(t, err)
	assert.Equal(t, w, got)

	_, err = gd.ParseWho(element(t, `<gd:who><gd:bogus/></gd:who>`))
	assert.EqualError(t, err, "unhandled <gd:bogus> element as a child of <gd:who>")

	_, err = gd.ParseWho(element(t, `<gd:who><gd:attendeeType/></gd:who>`))
	assert.EqualError(t, err, "required attribute @value missing from <gd:attendeeType>")
}

func TestWhen(t *testing.T) {
	t.Run("timed", func(t *testing.T) {
		w, err := gd.ParseWhen(element(t, `<gd:when startTime="2009-04-17T15:00:00.000Z" endTime="2009-04-17T16:30:00.000Z"><gd:reminder method="email" minutes="10"/></gd:when>`))
		require.NoError(t, err)
		assert.False(t, w.AllDay)
		assert.Equal(t, time.Date(2009, 4, 17, 15, 0, 0, 0, time.UTC), w.Start.UTC())
		assert.Equal(t, time.Date(2009, 4, 17, 16, 30, 0, 0, time.UTC), w.End.UTC())
		assert.Equal(t, []gd.Reminder{{Method: "email", Minutes: 10}}, w.Reminders)

		got, err := gd.ParseWhen(reparse(t, w.AppendTo))
		require.NoError(t, err)
		assert.True(t, w.Start.Equal(got.Start))
		assert.True(t, w.End.Equal(got.End))
		assert.Equal(t, w.Reminders, got.Reminders)
	})

	t.Run("all day", func(t *testing.T) {
		w, err := gd.ParseWhen(element(t, `<gd:when startTime="2009-04-17" endTime="2009-04-18"/>`))
		require.NoError(t, err)
		assert.True(t, w.AllDay)

		out := reparse(t, w.AppendTo)
		assert.Equal(t, "2009-04-17", out.SelectAttrValue("startTime", ""))
		assert.Equal(t, "2009-04-18", out.SelectAttrValue("endTime", ""))
	})

	t.Run("failures", func(t *testing.T) {
		_, err := gd.ParseWhen(element(t, `<gd:when endTime="2009-04-18"/>`))
		assert.True(t, errors.Is(err, gdataerrs.ErrRequiredAttributeMissing))

		_, err = gd.ParseWhen(element(t, `<gd:when startTime="noon"/>`))
		assert.True(t, errors.Is(err, gdataerrs.ErrNotISO8601))
		assert.EqualError(t, err, `attribute @startTime of <gd:when> was not an ISO 8601 timestamp: "noon"`)
	})
}

func TestContactValues(t *testing.T) {
	t.Run("email", func(t *testing.T) {
		e, err := gd.ParseEmail(element(t, `<gd:email address="a@example.com" rel="`+gd.RelWork+`" primary="true"/>`))
		require.NoError(t, err)
		assert.Equal(t, gd.Email{Address: "a@example.com", Rel: gd.RelWork, Primary: true}, e)

		got, err := gd.ParseEmail(reparse(t, e.AppendTo))
		require.NoError(t, err)
		assert.Equal(t, e, got)

		_, err = gd.ParseEmail(element(t, `<gd:email rel="x"/>`))
		assert.True(t, errors.Is(err, gdataerrs.ErrRequiredAttributeMissing))

		_, err = gd.ParseEmail(element(t, `<gd:email address="a@example.com" primary="yes"/>`))
		assert.EqualError(t, err, `attribute @primary of <gd:email> had unknown value "yes"`)
	})

	t.Run("phone number", func(t *testing.T) {
		p, err := gd.ParsePhoneNumber(element(t, `<gd:phoneNumber rel="`+gd.RelMobile+`">+1 555 0100</gd:phoneNumber>`), "entry")
		require.NoError(t, err)
		assert.Equal(t, gd.PhoneNumber{Number: "+1 555 0100", Rel: gd.RelMobile}, p)

		got, err := gd.ParsePhoneNumber(reparse(t, p.AppendTo), "entry")
		require.NoError(t, err)
		assert.Equal(t, p, got)

		_, err = gd.ParsePhoneNumber(element(t, `<gd:phoneNumber/>`), "entry")
		assert.EqualError(t, err, "required content of <gd:phoneNumber> in <entry> missing")
	})

	t.Run("postal address", func(t *testing.T) {
		a, err := gd.ParsePostalAddress(element(t, `<gd:postalAddress label="Office">1 Main St &amp; Co</gd:postalAddress>`), "entry")
		require.NoError(t, err)
		assert.Equal(t, "1 Main St & Co", a.Address)

		got, err := gd.ParsePostalAddress(reparse(t, a.AppendTo), "entry")
		require.NoError(t, err)
		assert.Equal(t, a, got)
	})

	t.Run("name", func(t *testing.T) {
		n, err := gd.ParseName(element(t, `<gd:name><gd:givenName>Ada</gd:givenName><gd:familyName>Lovelace</gd:familyName></gd:name>`))
		require.NoError(t, err)
		assert.Equal(t, gd.Name{GivenName: "Ada", FamilyName: "Lovelace"}, n)
		assert.False(t, n.IsZero())

		got, err := gd.ParseName(reparse(t, n.AppendTo))
		require.NoError(t, err)
		assert.Equal(t, n, got)

		_, err = gd.ParseName(element(t, `<gd:name><gd:givenName>A</gd:givenName><gd:givenName>B</gd:givenName></gd:name>`))
		assert.True(t, errors.Is(err, gdataerrs.ErrDuplicateElement))

		// An empty first occurrence still counts.
		_, err = gd.ParseName(element(t, `<gd:name><gd:givenName/><gd:givenName>B</gd:givenName></gd:name>`))
		assert.True(t, errors.Is(err, gdataerrs.ErrDuplicateElement))
	})

	t.Run("extended property", func(t *testing.T) {
		p, err := gd.ParseExtendedProperty(element(t, `<gd:extendedProperty name="color" value="red"/>`))
		require.NoError(t, err)
		assert.Equal(t, gd.ExtendedProperty{Name: "color", Value: "red"}, p)

		_, err = gd.ParseExtendedProperty(element(t, `<gd:extendedProperty value="red"/>`))
		assert.EqualError(t, err, "required attribute @name missing from <gd:extendedProperty>")
	})
}

func TestFeedLink(t *testing.T) {
	fl, err := gd.ParseFeedLink(element(t, `<gd:feedLink href="http://e.com/comments" rel="comments" countHint="4" readOnly="true"/>`))
	require.NoError(t, err)
	assert.Equal(t, gd.FeedLink{Href: "http://e.com/comments", Rel: "comments", CountHint: 4, ReadOnly: true}, fl)

	got, err := gd.ParseFeedLink(reparse(t, fl.AppendTo))
	require.NoError(t, err)
	assert.Equal(t, fl, got)

	_, err = gd.ParseFeedLink(element(t, `<gd:feedLink rel="comments"/>`))
	assert.True(t, errors.Is(err, gdataerrs.ErrRequiredAttributeMissing))
}

func TestOriginalEvent(t *testing.T) {
	o, err := gd.ParseOriginalEvent(element(t, `<gd:originalEvent id="abc" href="http://e.com/abc"><gd:when startTime="2009-04-17T15:00:00Z"/></gd:originalEvent>`))
	require.NoError(t, err)
	assert.Equal(t, "abc", o.ID)
	assert.Equal(t, time.Date(2009, 4, 17, 15, 0, 0, 0, time.UTC), o.OriginalStartTime.Start.UTC())

	got, err := gd.ParseOriginalEvent(reparse(t, o.AppendTo))
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.True(t, o.OriginalStartTime.Start.Equal(got.OriginalStartTime.Start))

	_, err = gd.ParseOriginalEvent(element(t, `<gd:originalEvent id="abc" href="h"/>`))
	assert.EqualError(t, err, "required element <gd:when> missing from <gd:originalEvent>")
}
