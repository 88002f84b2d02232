package ews

const envelopeTemplate = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
  xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"
  xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages">
  <soap:Header>
    <t:RequestServerVersion Version="%s"/>
  </soap:Header>
  <soap:Body>%s</soap:Body>
</soap:Envelope>`

const getRoomListsBody = `<m:GetRoomLists/>`

const getRoomsBody = `<m:GetRooms>
  <m:RoomList>
    <t:EmailAddress>%s</t:EmailAddress>
  </m:RoomList>
</m:GetRooms>`

// Порядок аргументов: MaxEntriesReturned, StartDate, EndDate, почта переговорки
const findItemBody = `<m:FindItem Traversal="Shallow">
  <m:ItemShape>
    <t:BaseShape>IdOnly</t:BaseShape>
    <t:AdditionalProperties>
      <t:FieldURI FieldURI="item:Subject"/>
      <t:FieldURI FieldURI="item:Sensitivity"/>
      <t:FieldURI FieldURI="calendar:Start"/>
      <t:FieldURI FieldURI="calendar:End"/>
      <t:FieldURI FieldURI="calendar:Organizer"/>
    </t:AdditionalProperties>
  </m:ItemShape>
  <m:CalendarView MaxEntriesReturned="%d" StartDate="%s" EndDate="%s"/>
  <m:ParentFolderIds>
    <t:DistinguishedFolderId Id="calendar">
      <t:Mailbox>
        <t:EmailAddress>%s</t:EmailAddress>
      </t:Mailbox>
    </t:DistinguishedFolderId>
  </m:ParentFolderIds>
</m:FindItem>`
