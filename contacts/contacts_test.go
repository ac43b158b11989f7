package contacts_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/gdata"
	"github.com/jdholdren/gdata/contacts"
	gdataerrs "github.com/jdholdren/gdata/errors"
	"github.com/jdholdren/gdata/gd"
)

const testContact = `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005"
    xmlns:gContact="http://schemas.google.com/contact/2008" xmlns:app="http://www.w3.org/2007/app"
    gd:etag="&quot;Qn04eTVSLyp7ImA9WxRbGEUORAQ.&quot;">
  <id>http://www.google.com/m8/feeds/contacts/liz%40gmail.com/base/c9012de</id>
  <updated>2008-12-10T04:45:03.331Z</updated>
  <app:edited>2008-12-10T04:45:03.331Z</app:edited>
  <category scheme="http://schemas.google.com/g/2005#kind" term="http://schemas.google.com/contact/2008#contact"/>
  <title>Fitzwilliam Darcy</title>
  <link rel="http://schemas.google.com/contacts/2008/rel#photo" type="image/*" href="http://www.google.com/m8/feeds/photos/media/liz%40gmail.com/c9012de"/>
  <link rel="self" type="application/atom+xml" href="http://www.google.com/m8/feeds/contacts/liz%40gmail.com/full/c9012de"/>
  <gd:name><gd:givenName>Fitzwilliam</gd:givenName><gd:familyName>Darcy</gd:familyName><gd:fullName>Fitzwilliam Darcy</gd:fullName></gd:name>
  <gd:phoneNumber rel="http://schemas.google.com/g/2005#home" primary="true">456</gd:phoneNumber>
  <gd:email address="fitzy@gmail.com" rel="http://schemas.google.com/g/2005#home"/>
  <gd:email address="darcy@example.com" rel="http://schemas.google.com/g/2005#work" primary="true"/>
  <gd:postalAddress rel="http://schemas.google.com/g/2005#work">Pemberley, Derbyshire</gd:postalAddress>
  <gd:extendedProperty name="pet" value="hound"/>
  <gContact:groupMembershipInfo deleted="false" href="http://www.google.com/m8/feeds/groups/liz%40gmail.com/base/270f"/>
</entry>`

func TestParseContact(t *testing.T) {
	c, err := contacts.ParseContact([]byte(testContact))
	require.NoError(t, err)

	assert.Equal(t, "Fitzwilliam Darcy", c.Title)
	assert.True(t, c.IsInserted())
	assert.Equal(t, gd.Name{GivenName: "Fitzwilliam", FamilyName: "Darcy", FullName: "Fitzwilliam Darcy"}, c.Name)
	assert.Equal(t, []gd.PhoneNumber{{Number: "456", Rel: gd.RelHome, Primary: true}}, c.PhoneNumbers)
	assert.Len(t, c.Emails, 2)
	assert.Equal(t, []gd.PostalAddress{{Address: "Pemberley, Derbyshire", Rel: gd.RelWork}}, c.Addresses)
	assert.Equal(t, []contacts.GroupMembership{{Href: "http://www.google.com/m8/feeds/groups/liz%40gmail.com/base/270f"}}, c.Groups)
	assert.False(t, c.Deleted)
	assert.False(t, c.Edited.IsZero())

	primary, ok := c.PrimaryEmail()
	require.True(t, ok)
	assert.Equal(t, "darcy@example.com", primary.Address)

	pet, ok := c.ExtendedProperty("pet")
	require.True(t, ok)
	assert.Equal(t, "hound", pet)

	photo, ok := c.PhotoLink()
	require.True(t, ok)
	assert.Equal(t, "image/*", photo.Type)
}

func TestContactRoundTrip(t *testing.T) {
	c := contacts.NewContact("Elizabeth Bennet")
	c.Name = gd.Name{GivenName: "Elizabeth", FamilyName: "Bennet"}
	c.Emails = []gd.Email{{Address: "liz@gmail.com", Rel: gd.RelHome, Primary: true}}
	c.PhoneNumbers = []gd.PhoneNumber{{Number: "(206)555-1212", Rel: gd.RelWork}}
	c.Addresses = []gd.PostalAddress{{Address: "Longbourn", Rel: gd.RelHome}}
	c.Groups = []contacts.GroupMembership{{Href: "http://e.com/groups/1"}}
	c.SetExtendedProperty("sisters", "4")
	c.SetExtendedProperty("temp", "x")
	c.SetExtendedProperty("temp", "")
	c.SetExtendedProperty("sisters", "5")

	out, err := c.XML()
	require.NoError(t, err)
	assert.Contains(t, out, `xmlns:gContact="http://schemas.google.com/contact/2008"`)

	got, err := contacts.ParseContact([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	assert.Equal(t, c.Categories, got.Categories)
	assert.Equal(t, c.Name, got.Name)
	assert.Equal(t, c.Emails, got.Emails)
	assert.Equal(t, c.PhoneNumbers, got.PhoneNumbers)
	assert.Equal(t, c.Addresses, got.Addresses)
	assert.Equal(t, c.Groups, got.Groups)
	assert.Equal(t, []gd.ExtendedProperty{{Name: "sisters", Value: "5"}}, got.ExtendedProperties)
}

func TestParseContact_Deleted(t *testing.T) {
	c, err := contacts.ParseContact([]byte(`<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005"><title>Gone</title><gd:deleted/></entry>`))
	require.NoError(t, err)
	assert.True(t, c.Deleted)

	out, err := c.XML()
	require.NoError(t, err)
	assert.Contains(t, out, "<gd:deleted/>")
}

func TestParseContact_Failures(t *testing.T) {
	const head = `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005" xmlns:gContact="http://schemas.google.com/contact/2008"><title>T</title>`

	tests := []struct {
		name    string
		body    string
		kind    error
		message string
	}{
		{
			name:    "email without address",
			body:    `<gd:email rel="x"/>`,
			kind:    gdataerrs.ErrRequiredAttributeMissing,
			message: "required attribute @address missing from <gd:email>",
		},
		{
			name:    "empty phone number",
			body:    `<gd:phoneNumber/>`,
			kind:    gdataerrs.ErrRequiredContentMissing,
			message: "required content of <gd:phoneNumber> in <entry> missing",
		},
		{
			name:    "unknown name part",
			body:    `<gd:name><gd:nickname>Liz</gd:nickname></gd:name>`,
			kind:    gdataerrs.ErrUnhandledElement,
			message: "unhandled <gd:nickname> element as a child of <gd:name>",
		},
		{
			name: "membership without href",
			body: `<gContact:groupMembershipInfo deleted="false"/>`,
			kind: gdataerrs.ErrRequiredAttributeMissing,
		},
		{
			name:    "unknown contact element",
			body:    `<gContact:birthday when="1990-01-01"/>`,
			kind:    gdataerrs.ErrUnhandledElement,
			message: "unhandled <gContact:birthday> element as a child of <entry>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := contacts.ParseContact([]byte(head + tt.body + `</entry>`))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
		})
	}
}

func TestParseFeed(t *testing.T) {
	doc := `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005">` +
		`<title>Contacts</title><id>urn:contacts</id><updated>2008-12-10T04:45:03.331Z</updated>` +
		`<entry><title>A</title><gd:email address="a@example.com"/></entry>` +
		`<entry><title>B</title><gd:email address="b@example.com"/></entry></feed>`

	f, err := contacts.ParseFeed([]byte(doc), gdata.FeedOptions[*contacts.Contact]{})
	require.NoError(t, err)
	require.Len(t, f.Entries, 2)
	assert.Equal(t, "a@example.com", f.Entries[0].Emails[0].Address)
	assert.Equal(t, "b@example.com", f.Entries[1].Emails[0].Address)
}
