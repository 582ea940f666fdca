package store

// RebuildIndices recomputes the six lookup indices and the c:spo
// inverse from the primary spo:c entries in the data environment,
// matching §2.3's guarantee that separating data and index
// environments lets indices be rebuilt from data alone. It must run
// inside a write transaction; it clears every index bucket first, so
// a failure partway through leaves the index environment
// inconsistent until the transaction is aborted.
func (t *Txn) RebuildIndices() (rebuilt int, err error) {
	for _, name := range indexBuckets {
		if err := t.indexTx.DeleteBucket(name); err != nil {
			return 0, err
		}
		if _, err := t.indexTx.CreateBucket(name); err != nil {
			return 0, err
		}
	}

	c := t.dataBucket(bucketSPOToC).Cursor()
	for spoc, _ := c.First(); spoc != nil; spoc, _ = c.Next() {
		tk := decodeFromOrdered(spoc[:3*KeyLen], orderSPO)
		var ck Key
		copy(ck[:], spoc[3*KeyLen:])

		cspo := append(append([]byte{}, ck[:]...), tk.order(orderSPO)...)
		if err := t.indexBucket(bucketCSP).Put(cspo, nil); err != nil {
			return rebuilt, err
		}
		for _, e := range []struct {
			bucket []byte
			order  [3]int
		}{
			{bucketS, orderSPO},
			{bucketP, orderPSO},
			{bucketO, orderOSP},
			{bucketPO, orderPOS},
			{bucketSO, orderSOP},
			{bucketSPO, orderSPO},
		} {
			if err := t.indexBucket(e.bucket).Put(tk.order(e.order), nil); err != nil {
				return rebuilt, err
			}
		}
		rebuilt++
	}
	return rebuilt, nil
}
