package extract

import "strings"

// htmlNotification renders an HTML notification in the sender's layout.
// An empty mileage row label drops the Mileage row entirely.
func htmlNotification(headline, vehicleCell, mileageRow string) string {
	var b strings.Builder
	b.WriteString(`<html>
<body>
<div style="font-size:18px;font-weight:bold;color:#333">
` + headline + `
</div>
<table cellpadding="4">
<tr>
	<td style="font-weight:bold" align="right">Vehicle:</td>
	<td>` + vehicleCell + `</td>
</tr>
<tr>
	<td style="font-weight:bold" align="right">VIN:</td>
	<td> 4T1B11HK5KU123456 </td>
</tr>
`)
	if mileageRow != "" {
		b.WriteString(`<tr>
	<td style="font-weight:bold" align="right">Mileage:</td>
	<td>` + mileageRow + `</td>
</tr>
`)
	}
	b.WriteString(`<tr>
	<td style="font-weight:bold" align="right">Color:</td>
	<td>Celestial Silver</td>
</tr>
</table>
</body>
</html>
`)
	return b.String()
}

const plainNotification = "A vehicle on your watch list changed.\r\n" +
	"Vehicle: 2018 Honda Accord Sport\r\n" +
	"Stock #: A1234\r\n" +
	"VIN: 1HGCV1F34JA000001\r\n" +
	"Mileage: 32110\r\n" +
	"Color: Modern Steel\r\n" +
	"\r\n" +
	"Thanks,\r\n"
