// Package prefiks is the HTTP client for the prefiks search API.
//
// Basic usage:
//
//	client := prefiks.New("http://localhost:8080")
//	resp, err := client.Search(ctx, "масло 10л", 5)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, r := range resp.Results {
//		fmt.Println(r.Name, r.Score)
//	}
package prefiks
